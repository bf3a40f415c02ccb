package chat

import (
	"context"
	"errors"
	"time"
)

var (
	ErrChatExists  = errors.New("chat already exists")
	ErrUnknownKind = errors.New("unknown chat kind")
)

// Kind classifies a conversation container.
type Kind string

const (
	KindChannel Kind = "channel"
	KindGroup   Kind = "group"
	KindPrivate Kind = "private"
)

// Valid reports whether k is one of the three supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindChannel, KindGroup, KindPrivate:
		return true
	}
	return false
}

// Chat is a named conversation container. IDs are caller-supplied and
// globally unique. CreatedBy holds a username; it is recorded as given and
// never checked against the account table.
type Chat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registry exposes chat metadata persistence for HTTP handlers.
type Registry interface {
	// Create registers a new chat with a store-assigned creation time.
	// It fails with ErrUnknownKind when the kind is outside the enum and
	// with ErrChatExists when the id is taken, whether the pre-check or
	// the store's own primary key catches it.
	Create(ctx context.Context, c Chat) (Chat, error)
	// List returns all chats, most recently created first.
	List(ctx context.Context) ([]Chat, error)
	// Delete removes a chat and, by cascade, every message it owns.
	// Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}
