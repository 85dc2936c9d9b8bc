package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(newTestDB(t)).WithClock(fixedClock(&now))

	sess, err := sessions.Create(ctx, 7, time.Hour)
	require.NoError(t, err)
	assert.Len(t, sess.Token, 2*tokenBytes)
	assert.True(t, sess.ExpiresAt.Equal(now.Add(time.Hour)))

	uid, err := sessions.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, uid)

	require.NoError(t, sessions.Delete(ctx, sess.Token))
	_, err = sessions.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	// deleting twice is fine
	require.NoError(t, sessions.Delete(ctx, sess.Token))
}

func TestSessionTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newTestDB(t))

	a, err := sessions.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	b, err := sessions.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestResolveUnknownAndEmpty(t *testing.T) {
	sessions := NewSessions(newTestDB(t))
	for _, tok := range []string{"", "deadbeef"} {
		_, err := sessions.Resolve(context.Background(), tok)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	}
}

func TestExpiredSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(newTestDB(t)).WithClock(fixedClock(&now))

	short, err := sessions.Create(ctx, 1, time.Minute)
	require.NoError(t, err)
	long, err := sessions.Create(ctx, 2, 24*time.Hour)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = sessions.Resolve(ctx, short.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	n, err := sessions.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	uid, err := sessions.Resolve(ctx, long.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 2, uid)
}
