package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dkravets/chatline/backend/internal/config"
	"github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/internal/model/user"
	"github.com/dkravets/chatline/backend/internal/store/postgres"
)

// openTestStore connects to the database named by TEST_DATABASE_URL, or
// skips the test when none is configured.
func openTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	store, err := postgres.Open(context.Background(), config.DatabaseConfig{
		URL:             url,
		MaxOpenConns:    4,
		MaxIdleConns:    4,
		ConnMaxLifetime: 5 * time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	store := openTestStore(t)
	req := require.New(t)
	ctx := context.Background()

	username := "u-" + uuid.NewString()[:8]

	registered, err := store.Register(ctx, username, "pw1")
	req.NoError(err)
	req.NotZero(registered.ID)

	_, err = store.Register(ctx, username, "pw2")
	req.ErrorIs(err, user.ErrUsernameTaken)

	_, err = store.Authenticate(ctx, username, "pw2")
	req.ErrorIs(err, user.ErrInvalidCredentials)

	got, err := store.Authenticate(ctx, username, "pw1")
	req.NoError(err)
	req.Equal(registered.ID, got.ID)

	names, err := store.ListUsernames(ctx, username)
	req.NoError(err)
	req.NotContains(names, username)
}

func TestChatRegistryAndLedger(t *testing.T) {
	store := openTestStore(t)
	req := require.New(t)
	ctx := context.Background()

	chatID := uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), chatID) })

	_, err := store.Create(ctx, chat.Chat{ID: chatID, Name: "General", Kind: "broadcast", CreatedBy: "alice"})
	req.ErrorIs(err, chat.ErrUnknownKind)

	created, err := store.Create(ctx, chat.Chat{ID: chatID, Name: "General", Kind: chat.KindChannel, CreatedBy: "alice"})
	req.NoError(err)
	req.False(created.CreatedAt.IsZero())

	_, err = store.Create(ctx, chat.Chat{ID: chatID, Name: "Other", Kind: chat.KindGroup, CreatedBy: "bob"})
	req.ErrorIs(err, chat.ErrChatExists)

	_, ok, err := store.Latest(ctx, chatID)
	req.NoError(err)
	req.False(ok)

	for _, text := range []string{"hi", "there"} {
		_, err := store.Append(ctx, chat.Message{ChatID: chatID, Sender: "alice", Text: text})
		req.NoError(err)
	}

	messages, err := store.Transcript(ctx, chatID)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("hi", messages[0].Text)
	req.Equal("there", messages[1].Text)

	latest, ok, err := store.Latest(ctx, chatID)
	req.NoError(err)
	req.True(ok)
	req.Equal("there", latest.Text)

	chats, err := store.List(ctx)
	req.NoError(err)
	for i := 1; i < len(chats); i++ {
		req.False(chats[i-1].CreatedAt.Before(chats[i].CreatedAt))
	}
}

func TestDeleteChatCascades(t *testing.T) {
	store := openTestStore(t)
	req := require.New(t)
	ctx := context.Background()

	chatID := uuid.NewString()
	_, err := store.Create(ctx, chat.Chat{ID: chatID, Name: "Doomed", Kind: chat.KindGroup, CreatedBy: "alice"})
	req.NoError(err)
	_, err = store.Append(ctx, chat.Message{ChatID: chatID, Sender: "alice", Text: "hi"})
	req.NoError(err)

	req.NoError(store.Delete(ctx, chatID))

	messages, err := store.Transcript(ctx, chatID)
	req.NoError(err)
	req.Empty(messages, "the foreign key must cascade the delete to the ledger")
}

func TestAppendToUnknownChatRejected(t *testing.T) {
	store := openTestStore(t)
	req := require.New(t)

	// No application-level existence check; the foreign key is the one
	// that rejects orphans.
	_, err := store.Append(context.Background(), chat.Message{ChatID: uuid.NewString(), Sender: "alice", Text: "hi"})
	req.Error(err)
}
