package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/internal/model/user"
)

// Store keeps accounts, chats and messages in process memory. It backs
// local runs without a DATABASE_URL and the handler tests; its error
// behavior mirrors the PostgreSQL store so callers cannot tell them apart.
type Store struct {
	mu        sync.RWMutex
	users     map[string]user.User
	chats     map[string]chat.Chat
	chatOrder []string
	messages  map[string][]chat.Message
	nextUser  int64
	nextMsg   int64
}

// NewStore bootstraps an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]user.User),
		chats:    make(map[string]chat.Chat),
		messages: make(map[string][]chat.Message),
	}
}

// Register creates an account, rejecting duplicate usernames.
func (s *Store) Register(_ context.Context, username, password string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return user.User{}, user.ErrUsernameTaken
	}

	s.nextUser++
	u := user.User{
		ID:        s.nextUser,
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}
	s.users[username] = u
	return u, nil
}

// Authenticate matches both fields exactly; a missing user and a wrong
// password produce the same error.
func (s *Store) Authenticate(_ context.Context, username, password string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok || u.Password != password {
		return user.User{}, user.ErrInvalidCredentials
	}
	return u, nil
}

// ListUsernames returns all usernames in unspecified order, optionally
// omitting one.
func (s *Store) ListUsernames(_ context.Context, exclude string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users))
	for name := range s.users {
		if exclude != "" && name == exclude {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Create registers a chat under its caller-supplied id.
func (s *Store) Create(_ context.Context, c chat.Chat) (chat.Chat, error) {
	if !c.Kind.Valid() {
		return chat.Chat{}, chat.ErrUnknownKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[c.ID]; ok {
		return chat.Chat{}, chat.ErrChatExists
	}

	c.CreatedAt = time.Now().UTC()
	s.chats[c.ID] = c
	s.chatOrder = append(s.chatOrder, c.ID)
	return c, nil
}

// List returns chats newest first; equal timestamps keep creation order.
func (s *Store) List(_ context.Context) ([]chat.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chats := make([]chat.Chat, 0, len(s.chatOrder))
	for _, id := range s.chatOrder {
		chats = append(chats, s.chats[id])
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

// Delete removes a chat and its whole ledger.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return nil
	}

	delete(s.chats, id)
	delete(s.messages, id)
	for i, chatID := range s.chatOrder {
		if chatID == id {
			s.chatOrder = append(s.chatOrder[:i], s.chatOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Append stores a message with the next id and the current time. The chat
// id is recorded as given, matching the loose reference the HTTP layer
// promises.
func (s *Store) Append(_ context.Context, m chat.Message) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMsg++
	m.ID = s.nextMsg
	m.CreatedAt = time.Now().UTC()
	s.messages[m.ChatID] = append(s.messages[m.ChatID], m)
	return m, nil
}

// Transcript returns the ledger oldest first. Timestamps are assigned on
// append, so insertion order already is chronological order.
func (s *Store) Transcript(_ context.Context, chatID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[chatID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Latest returns the newest message of a chat, if any.
func (s *Store) Latest(_ context.Context, chatID string) (chat.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[chatID]
	if len(messages) == 0 {
		return chat.Message{}, false, nil
	}
	return messages[len(messages)-1], true, nil
}
