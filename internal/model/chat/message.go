package chat

import (
	"context"
	"time"
)

// Message is one immutable entry in a chat's ledger. ChatID and Sender are
// weak references: the relational store's foreign key is the only integrity
// check applied to them.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chatId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ledger is the append-only per-chat message store.
type Ledger interface {
	// Append stores a message with a store-assigned id and timestamp and
	// returns the stored record.
	Append(ctx context.Context, m Message) (Message, error)
	// Transcript returns the chat's messages ordered oldest first; the
	// creation timestamp is the sole ordering key, ties keep insertion
	// order.
	Transcript(ctx context.Context, chatID string) ([]Message, error)
	// Latest returns the most recent message of a chat; ok is false when
	// the chat has no messages yet.
	Latest(ctx context.Context, chatID string) (m Message, ok bool, err error)
}
