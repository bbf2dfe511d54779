package state

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the user has no live session.
var ErrNotFound = errors.New("state: session not found")

// Session is the contract a bot's session type must satisfy.
// Clone must return a deep copy so stores never share mutable data with callers.
type Session[S any] interface {
	Clone() S
}

// Store persists one session per user.
type Store[S Session[S]] interface {
	// Load returns ErrNotFound when no session exists or it has expired.
	Load(ctx context.Context, userID int64) (S, error)
	Save(ctx context.Context, userID int64, s S) error
	Clear(ctx context.Context, userID int64) error
}
