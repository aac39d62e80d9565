package store

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when creating a user whose id is already taken.
	ErrUserExists = errors.New("user already exists")
)

// User represents a user known to the relay.
type User struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Message represents a persisted private message.
type Message struct {
	ID         int64
	FromUserID int64
	ToUserID   int64
	Content    string
	CreatedAt  time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// FindUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	FindUserByID(ctx context.Context, id int64) (*User, error)

	// CreateUser creates a user with a caller-supplied ID.
	// Returns ErrUserExists if the ID is taken.
	CreateUser(ctx context.Context, id int64, name string) (*User, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message and returns it with its assigned ID.
	CreateMessage(ctx context.Context, fromUserID, toUserID int64, content string) (*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
