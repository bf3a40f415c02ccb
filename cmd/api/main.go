package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dkravets/chatline/backend/internal/config"
	"github.com/dkravets/chatline/backend/internal/handler"
	chatModel "github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/internal/model/user"
	"github.com/dkravets/chatline/backend/internal/store/memory"
	"github.com/dkravets/chatline/backend/internal/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var (
		users    user.Store
		chats    chatModel.Registry
		messages chatModel.Ledger
	)
	if cfg.Database.Enabled() {
		store, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer store.Close()
		log.Println("connected to PostgreSQL")
		users, chats, messages = store, store, store
	} else {
		log.Println("DATABASE_URL not set, falling back to the in-memory store")
		store := memory.NewStore()
		users, chats, messages = store, store, store
	}

	router := handler.NewRouter(users, chats, messages, cfg.CORS.AllowedOrigins)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Chatline backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
