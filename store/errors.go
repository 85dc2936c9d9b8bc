// Package store persists users, sessions and feedings through bun.
package store

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrNotFound           = errors.New("not found")
	ErrSessionInvalid     = errors.New("session invalid or expired")
	ErrValidation         = errors.New("validation error")
)

// isUniqueViolation matches the duplicate-key messages of the supported drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "unique constraint failed") || // sqlite
		strings.Contains(msg, "duplicate entry") // mysql
}
