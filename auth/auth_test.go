package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	bundb "github.com/padraicbc/feedlog/db"
	"github.com/padraicbc/feedlog/store"
)

func newAuthenticator(t *testing.T, now *time.Time) (*Authenticator, *store.Users) {
	t.Helper()
	ctx := context.Background()
	db, err := bundb.Open(ctx, ":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, bundb.CreateTables(ctx, db))

	users := store.NewUsers(db, bcrypt.MinCost)
	sessions := store.NewSessions(db).WithClock(func() time.Time { return *now })
	return New(users, sessions, time.Hour), users
}

func TestLoginResolveLogout(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a, users := newAuthenticator(t, &now)

	u, err := users.Register(ctx, "erin", "pw")
	require.NoError(t, err)

	sess, err := a.Login(ctx, "erin", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)

	got, err := a.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "erin", got.Username)

	require.NoError(t, a.Logout(ctx, sess.Token))
	_, err = a.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, store.ErrSessionInvalid)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	a, users := newAuthenticator(t, &now)
	_, err := users.Register(ctx, "frank", "pw")
	require.NoError(t, err)

	_, err = a.Login(ctx, "frank", "wrong")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)
	_, err = a.Login(ctx, "ghost", "pw")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a, users := newAuthenticator(t, &now)
	_, err := users.Register(ctx, "gina", "pw")
	require.NoError(t, err)

	sess, err := a.Login(ctx, "gina", "pw")
	require.NoError(t, err)

	now = now.Add(a.TTL() - time.Second)
	_, err = a.Resolve(ctx, sess.Token)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = a.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, store.ErrSessionInvalid)
}

func TestLogoutEmptyToken(t *testing.T) {
	now := time.Now()
	a, _ := newAuthenticator(t, &now)
	assert.NoError(t, a.Logout(context.Background(), ""))
}
