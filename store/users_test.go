package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/feedlog/models"
)

func TestRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(t)

	u, err := users.Register(ctx, "  alice ", "hunter2")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "hunter2", u.PasswordHash)

	got, err := users.Verify(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	byID, err := users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestRegisterDuplicateKeepsFirstCredentials(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(t)

	_, err := users.Register(ctx, "bob", "first")
	require.NoError(t, err)

	_, err = users.Register(ctx, "bob", "second")
	require.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = users.Verify(ctx, "bob", "first")
	require.NoError(t, err)
	_, err = users.Verify(ctx, "bob", "second")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsAlteredPassword(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(t)
	_, err := users.Register(ctx, "carol", "correct-horse")
	require.NoError(t, err)

	for _, pw := range []string{"correct-horsf", "Correct-horse", "correct-hors", ""} {
		_, err := users.Verify(ctx, "carol", pw)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "password %q", pw)
	}

	_, err = users.Verify(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(t)

	tests := []struct {
		name, username, password string
	}{
		{"blank username", "   ", "pw"},
		{"blank password", "dave", "  "},
		{"too long password", "dave", strings.Repeat("x", 80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Register(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestByIDNotFound(t *testing.T) {
	_, err := newTestUsers(t).ByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBootstrapAdminIdempotent(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(t)

	created, err := users.BootstrapAdmin(ctx, "admin", "password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = users.BootstrapAdmin(ctx, "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)

	// the original password survives the second call
	_, err = users.Verify(ctx, "admin", "password")
	require.NoError(t, err)

	n, err := users.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(t)

	_, err := users.Register(ctx, "carol", "old-secret")
	require.NoError(t, err)

	require.NoError(t, users.SetPassword(ctx, " carol", "new-secret"))

	_, err = users.Verify(ctx, "carol", "old-secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Verify(ctx, "carol", "new-secret")
	assert.NoError(t, err)

	assert.ErrorIs(t, users.SetPassword(ctx, "nobody", "x"), ErrNotFound)
}
