package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session maps an opaque browser token to a user until ExpiresAt.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	Token     string    `bun:"token,pk" json:"-"`
	UserID    int64     `bun:"user_id,notnull" json:"userID"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	ExpiresAt time.Time `bun:"expires_at,notnull" json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
