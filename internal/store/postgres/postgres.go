package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/dkravets/chatline/backend/internal/config"
	"github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/internal/model/user"
)

// Store persists accounts, chats and messages in PostgreSQL. All access
// goes through a bounded database/sql pool; each operation is one round
// trip (or the check-then-insert pair), and the schema's unique index,
// CHECK and cascading foreign key are the arbiters for races and
// referential integrity.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// Open dials PostgreSQL through the pgx stdlib driver, applies the pool
// limits from cfg, and runs schema migration.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	pgxCfg, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pgxCfg)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&userRecord{}, &chatRecord{}, &messageRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db, sqlDB: sqlDB}, nil
}

// Close tears down the connection pool.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// Register pre-checks the username and inserts. The pre-check is not
// transactional with the insert; a racing registration is settled by the
// unique index and the loser gets the same outcome.
func (s *Store) Register(ctx context.Context, username, password string) (user.User, error) {
	db := s.db.WithContext(ctx)

	var existing userRecord
	err := db.Where("username = ?", username).Take(&existing).Error
	switch {
	case err == nil:
		return user.User{}, user.ErrUsernameTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return user.User{}, fmt.Errorf("check username: %w", err)
	}

	rec := userRecord{Username: username, Password: password}
	if err := db.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return rec.toDomain(), nil
}

// Authenticate matches username and password in a single query, so a
// missing user and a wrong password are indistinguishable to the caller.
func (s *Store) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).
		Where("username = ? AND password = ?", username, password).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user.User{}, user.ErrInvalidCredentials
	}
	if err != nil {
		return user.User{}, fmt.Errorf("look up credentials: %w", err)
	}
	return rec.toDomain(), nil
}

// ListUsernames returns all usernames, optionally omitting one.
func (s *Store) ListUsernames(ctx context.Context, exclude string) ([]string, error) {
	query := s.db.WithContext(ctx).Model(&userRecord{})
	if exclude != "" {
		query = query.Where("username <> ?", exclude)
	}

	var names []string
	if err := query.Pluck("username", &names).Error; err != nil {
		return nil, fmt.Errorf("list usernames: %w", err)
	}
	return names, nil
}

// Create pre-checks the chat id and inserts; as with Register, the primary
// key settles concurrent creations of the same id.
func (s *Store) Create(ctx context.Context, c chat.Chat) (chat.Chat, error) {
	if !c.Kind.Valid() {
		return chat.Chat{}, chat.ErrUnknownKind
	}

	db := s.db.WithContext(ctx)

	var existing chatRecord
	err := db.Where("id = ?", c.ID).Take(&existing).Error
	switch {
	case err == nil:
		return chat.Chat{}, chat.ErrChatExists
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return chat.Chat{}, fmt.Errorf("check chat id: %w", err)
	}

	rec := chatRecord{ID: c.ID, Name: c.Name, Kind: string(c.Kind), CreatedBy: c.CreatedBy}
	if err := db.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return chat.Chat{}, chat.ErrChatExists
		}
		return chat.Chat{}, fmt.Errorf("insert chat: %w", err)
	}
	return rec.toDomain(), nil
}

// List returns chats newest first; the id is a tie-breaker so equal
// timestamps keep a stable order.
func (s *Store) List(ctx context.Context) ([]chat.Chat, error) {
	var recs []chatRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	chats := make([]chat.Chat, len(recs))
	for i, rec := range recs {
		chats[i] = rec.toDomain()
	}
	return chats, nil
}

// Delete removes a chat; the ON DELETE CASCADE on messages.chat_id takes
// the ledger with it.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&chatRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// Append inserts a message with a database-assigned id and timestamp. The
// chat id is passed through as given; an orphaned id is rejected by the
// foreign key, not by this layer.
func (s *Store) Append(ctx context.Context, m chat.Message) (chat.Message, error) {
	rec := messageRecord{ChatID: m.ChatID, Sender: m.Sender, Text: m.Text}
	err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(&rec).Error
	if err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return rec.toDomain(), nil
}

// Transcript returns a chat's messages oldest first, ties broken by id.
func (s *Store) Transcript(ctx context.Context, chatID string) ([]chat.Message, error) {
	var recs []messageRecord
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]chat.Message, len(recs))
	for i, rec := range recs {
		messages[i] = rec.toDomain()
	}
	return messages, nil
}

// Latest returns the newest message of a chat, if any.
func (s *Store) Latest(ctx context.Context, chatID string) (chat.Message, bool, error) {
	var rec messageRecord
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return chat.Message{}, false, nil
	}
	if err != nil {
		return chat.Message{}, false, fmt.Errorf("latest message: %w", err)
	}
	return rec.toDomain(), true, nil
}
