package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/internal/model/user"
	"github.com/dkravets/chatline/backend/internal/store/memory"
)

func TestRegisterDuplicateUsername(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	ctx := context.Background()

	first, err := store.Register(ctx, "alice", "pw1")
	req.NoError(err)
	req.Equal("alice", first.Username)
	req.NotZero(first.ID)

	_, err = store.Register(ctx, "alice", "other")
	req.ErrorIs(err, user.ErrUsernameTaken)

	names, err := store.ListUsernames(ctx, "")
	req.NoError(err)
	req.Equal([]string{"alice"}, names)
}

func TestAuthenticateExactMatchOnly(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	ctx := context.Background()

	registered, err := store.Register(ctx, "alice", "pw1")
	req.NoError(err)

	_, err = store.Authenticate(ctx, "alice", "pw2")
	req.ErrorIs(err, user.ErrInvalidCredentials)

	_, err = store.Authenticate(ctx, "bob", "pw1")
	req.ErrorIs(err, user.ErrInvalidCredentials, "unknown user must fail with the same error as a wrong password")

	got, err := store.Authenticate(ctx, "alice", "pw1")
	req.NoError(err)
	req.Equal(registered.ID, got.ID)
	req.Equal("alice", got.Username)
}

func TestListUsernamesExclude(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := store.Register(ctx, name, "pw")
		req.NoError(err)
	}

	names, err := store.ListUsernames(ctx, "bob")
	req.NoError(err)
	req.ElementsMatch([]string{"alice", "carol"}, names)

	// Exclusion is exact-match only.
	names, err = store.ListUsernames(ctx, "Bob")
	req.NoError(err)
	req.ElementsMatch([]string{"alice", "bob", "carol"}, names)
}

func TestCreateChatRejectsUnknownKind(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.Create(ctx, chat.Chat{ID: "c1", Name: "General", Kind: "broadcast", CreatedBy: "alice"})
	req.ErrorIs(err, chat.ErrUnknownKind)

	chats, err := store.List(ctx)
	req.NoError(err)
	req.Empty(chats, "nothing may be written for a rejected kind")
}

func TestCreateChatDuplicateID(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.Create(ctx, chat.Chat{ID: "c1", Name: "General", Kind: chat.KindChannel, CreatedBy: "alice"})
	req.NoError(err)

	_, err = store.Create(ctx, chat.Chat{ID: "c1", Name: "Other", Kind: chat.KindGroup, CreatedBy: "bob"})
	req.ErrorIs(err, chat.ErrChatExists)

	chats, err := store.List(ctx)
	req.NoError(err)
	req.Len(chats, 1)
	req.Equal("General", chats[0].Name)
}

func TestListChatsNewestFirst(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	ctx := context.Background()

	ids := []string{"c1", "c2", "c3"}
	for _, id := range ids {
		_, err := store.Create(ctx, chat.Chat{ID: id, Name: id, Kind: chat.KindGroup, CreatedBy: "alice"})
		req.NoError(err)
	}

	chats, err := store.List(ctx)
	req.NoError(err)
	req.Len(chats, len(ids))
	for i := 1; i < len(chats); i++ {
		req.False(chats[i-1].CreatedAt.Before(chats[i].CreatedAt),
			"chats must be ordered by non-increasing creation time")
	}
}

func TestTranscriptOrderAndLatest(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.Create(ctx, chat.Chat{ID: "c1", Name: "General", Kind: chat.KindChannel, CreatedBy: "alice"})
	req.NoError(err)

	_, ok, err := store.Latest(ctx, "c1")
	req.NoError(err)
	req.False(ok, "empty chat has no latest message")

	for _, text := range []string{"hi", "there"} {
		_, err := store.Append(ctx, chat.Message{ChatID: "c1", Sender: "alice", Text: text})
		req.NoError(err)
	}

	messages, err := store.Transcript(ctx, "c1")
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("hi", messages[0].Text)
	req.Equal("there", messages[1].Text)
	for i := 1; i < len(messages); i++ {
		req.False(messages[i].CreatedAt.Before(messages[i-1].CreatedAt),
			"transcript must be ordered by non-decreasing creation time")
	}

	latest, ok, err := store.Latest(ctx, "c1")
	req.NoError(err)
	req.True(ok)
	req.Equal(messages[len(messages)-1].ID, latest.ID)
	req.Equal("there", latest.Text)
}

func TestDeleteChatCascades(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.Create(ctx, chat.Chat{ID: "c1", Name: "General", Kind: chat.KindChannel, CreatedBy: "alice"})
	req.NoError(err)
	_, err = store.Append(ctx, chat.Message{ChatID: "c1", Sender: "alice", Text: "hi"})
	req.NoError(err)

	req.NoError(store.Delete(ctx, "c1"))

	chats, err := store.List(ctx)
	req.NoError(err)
	req.Empty(chats)

	messages, err := store.Transcript(ctx, "c1")
	req.NoError(err)
	req.Empty(messages, "deleting a chat must take its ledger with it")

	// Unknown ids are a no-op.
	req.NoError(store.Delete(ctx, "c1"))
}
