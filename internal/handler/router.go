package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/dkravets/chatline/backend/internal/handler/auth"
	chatHandler "github.com/dkravets/chatline/backend/internal/handler/chat"
	messageHandler "github.com/dkravets/chatline/backend/internal/handler/message"
	chatModel "github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/internal/model/user"
	"github.com/dkravets/chatline/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the backing stores. Handlers are
// stateless; every request maps to exactly one store operation.
func NewRouter(users user.Store, chats chatModel.Registry, messages chatModel.Ledger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(api chi.Router) {
		authHandler.New(users).RegisterRoutes(api)
		chatHandler.New(chats).RegisterRoutes(api)
		messageHandler.New(messages).RegisterRoutes(api)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	return r
}
