package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUsernameTaken      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the persisted account record. Password holds the raw stored
// credential exactly as registered; login is a direct equality check.
// Hashing is a known open concern, not applied here so the stored shape
// and login behavior stay compatible with existing deployments.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public is the account shape returned to clients after register and login.
type Public struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Public strips the credential from the record.
func (u User) Public() Public {
	return Public{ID: u.ID, Username: u.Username}
}

// Store exposes account persistence for HTTP handlers.
type Store interface {
	// Register creates a new account with a store-assigned id and creation
	// time. It fails with ErrUsernameTaken when the username exists,
	// whether the pre-check or the store's unique index catches it when
	// two registrations race.
	Register(ctx context.Context, username, password string) (User, error)
	// Authenticate returns the account matching both username and password
	// exactly, or ErrInvalidCredentials for any mismatch. The error never
	// reveals which field was wrong.
	Authenticate(ctx context.Context, username, password string) (User, error)
	// ListUsernames returns every known username in unspecified order,
	// omitting exclude when non-empty (exact match).
	ListUsernames(ctx context.Context, exclude string) ([]string, error)
}
