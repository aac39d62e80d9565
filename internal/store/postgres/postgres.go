// Package postgres implements store.Store on top of a pgx connection pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vovakirdan/dmrelay/internal/store"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// PostgresStore implements store.Store for PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New connects to the database at dsn and applies the schema.
func New(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// FindUserByID retrieves a user by ID.
func (s *PostgresStore) FindUserByID(ctx context.Context, id int64) (*store.User, error) {
	var user store.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a user with a caller-supplied ID.
func (s *PostgresStore) CreateUser(ctx context.Context, id int64, name string) (*store.User, error) {
	user := store.User{ID: id, Name: name}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name) VALUES ($1, $2) RETURNING created_at`, id, name,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("user %d: %w", id, store.ErrUserExists)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// CreateMessage persists a message and returns it with the assigned ID.
func (s *PostgresStore) CreateMessage(ctx context.Context, fromUserID, toUserID int64, content string) (*store.Message, error) {
	msg := store.Message{FromUserID: fromUserID, ToUserID: toUserID, Content: content}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (from_user_id, to_user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		fromUserID, toUserID, content,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}
