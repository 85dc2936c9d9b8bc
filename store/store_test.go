package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	bundb "github.com/padraicbc/feedlog/db"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()
	db, err := bundb.Open(ctx, ":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, bundb.CreateTables(ctx, db))
	return db
}

func newTestUsers(t *testing.T) *Users {
	t.Helper()
	return NewUsers(newTestDB(t), bcrypt.MinCost)
}

// fixedClock returns a clock that reports *at and can be moved by the test.
func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}
