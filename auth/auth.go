// Package auth ties credential checks to server-side sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/padraicbc/feedlog/models"
	"github.com/padraicbc/feedlog/store"
)

// CredentialVerifier checks a username/password pair.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*models.User, error)
	ByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionStore creates, resolves and destroys opaque session tokens.
type SessionStore interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (*models.Session, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

// Authenticator establishes and tears down login sessions.
type Authenticator struct {
	users    CredentialVerifier
	sessions SessionStore
	ttl      time.Duration
}

// New returns an Authenticator issuing sessions valid for ttl.
func New(users CredentialVerifier, sessions SessionStore, ttl time.Duration) *Authenticator {
	return &Authenticator{users: users, sessions: sessions, ttl: ttl}
}

// TTL is how long new sessions stay valid.
func (a *Authenticator) TTL() time.Duration { return a.ttl }

// Login verifies the credentials and opens a session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := a.users.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	sess, err := a.sessions.Create(ctx, user.ID, a.ttl)
	if err != nil {
		return nil, fmt.Errorf("login %q: %w", user.Username, err)
	}
	return sess, nil
}

// Logout invalidates token. An empty or unknown token is not an error.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.Delete(ctx, token)
}

// Resolve returns the user a token belongs to, or store.ErrSessionInvalid.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*models.User, error) {
	uid, err := a.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := a.users.ByID(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
