package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vovakirdan/dmrelay/internal/store"
)

const envTestDSN = "DMRELAY_TEST_POSTGRES_DSN"

// newTestStore connects to the database named by DMRELAY_TEST_POSTGRES_DSN and
// truncates both tables. Tests are skipped when the variable is unset.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s not set", envTestDSN)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.pool.Exec(ctx, `TRUNCATE messages, users RESTART IDENTITY`)
	require.NoError(t, err)
	return s
}

func TestPostgresUsers(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.FindUserByID(ctx, 1)
	req.ErrorIs(err, store.ErrNotFound)

	created, err := s.CreateUser(ctx, 1, "alice")
	req.NoError(err)
	req.Equal(int64(1), created.ID)
	req.False(created.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, 1, "mallory")
	req.ErrorIs(err, store.ErrUserExists)

	found, err := s.FindUserByID(ctx, 1)
	req.NoError(err)
	req.Equal("alice", found.Name)
}

func TestPostgresMessages(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, 1, "alice")
	req.NoError(err)
	_, err = s.CreateUser(ctx, 2, "bob")
	req.NoError(err)

	first, err := s.CreateMessage(ctx, 1, 2, "hi")
	req.NoError(err)
	second, err := s.CreateMessage(ctx, 2, 1, "hey")
	req.NoError(err)
	req.Greater(second.ID, first.ID)

	_, err = s.CreateMessage(ctx, 1, 99, "nobody")
	req.Error(err)
}
