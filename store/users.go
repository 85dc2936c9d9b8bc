package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/padraicbc/feedlog/models"
)

// Users is the credential store.
type Users struct {
	db   bun.IDB
	cost int
	now  func() time.Time

	// compared against when the username is unknown so both failure paths cost a bcrypt run
	dummyHash []byte
}

// NewUsers returns a credential store hashing with the given bcrypt cost.
// A cost of 0 means bcrypt.DefaultCost.
func NewUsers(db bun.IDB, cost int) *Users {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("feedlog-dummy"), cost)
	return &Users{db: db, cost: cost, now: time.Now, dummyHash: dummy}
}

// HashPassword validates username/password input and returns a bcrypt hash for storage.
func HashPassword(username, password string, cost int) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("%w: username is required", ErrValidation)
	}
	if strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("%w: password is required", ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is too long", ErrValidation)
		}
		return "", err
	}

	return string(hashedPassword), nil
}

// Register creates a user. The username is trimmed before it is stored.
func (u *Users) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	hash, err := HashPassword(username, password, u.cost)
	if err != nil {
		return nil, err
	}

	exists, err := u.db.NewSelect().Model((*models.User)(nil)).
		Where("username = ?", username).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", username, err)
	}
	if exists {
		return nil, ErrDuplicateUsername
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    u.now().UTC().Truncate(time.Second),
	}
	if _, err := u.db.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user %q: %w", username, err)
	}

	return user, nil
}

// Verify returns the user when password matches the stored hash.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (u *Users) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := u.ByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(u.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ByUsername looks a user up by trimmed username.
func (u *Users) ByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := u.db.NewSelect().Model(user).
		Where("username = ?", strings.TrimSpace(username)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return user, nil
}

// ByID looks a user up by primary key.
func (u *Users) ByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := u.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return user, nil
}

// BootstrapAdmin creates the default account unless a user with that name
// already exists. It reports whether a user was created.
func (u *Users) BootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := u.Register(ctx, username, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrDuplicateUsername):
		return false, nil
	default:
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
}

// SetPassword replaces the password of an existing user.
func (u *Users) SetPassword(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	hash, err := HashPassword(username, password, u.cost)
	if err != nil {
		return err
	}

	res, err := u.db.NewUpdate().Model((*models.User)(nil)).
		Set("password_hash = ?", hash).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update password for %q: %w", username, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return nil
}
