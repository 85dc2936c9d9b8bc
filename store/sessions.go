package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/feedlog/models"
)

const tokenBytes = 32

// Sessions is the server-side session store keyed by opaque token.
type Sessions struct {
	db  bun.IDB
	now func() time.Time
}

// NewSessions returns a session store backed by db.
func NewSessions(db bun.IDB) *Sessions {
	return &Sessions{db: db, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

// Create stores a new session for userID valid for ttl.
func (s *Sessions) Create(ctx context.Context, userID int64, ttl time.Duration) (*models.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	sess := &models.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if _, err := s.db.NewInsert().Model(sess).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Resolve returns the user id bound to token, or ErrSessionInvalid when the
// token is unknown or expired.
func (s *Sessions) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrSessionInvalid
	}

	sess := &models.Session{}
	err := s.db.NewSelect().Model(sess).Where("token = ?", token).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSessionInvalid
		}
		return 0, fmt.Errorf("select session: %w", err)
	}
	if sess.Expired(s.now()) {
		return 0, ErrSessionInvalid
	}
	return sess.UserID, nil
}

// Delete removes the session. Unknown tokens are ignored.
func (s *Sessions) Delete(ctx context.Context, token string) error {
	_, err := s.db.NewDelete().Model((*models.Session)(nil)).
		Where("token = ?", token).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions past their expiry and returns how many went.
func (s *Sessions) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().Model((*models.Session)(nil)).
		Where("expires_at <= ?", s.now().UTC().Truncate(time.Second)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
