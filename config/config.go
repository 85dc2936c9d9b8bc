// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// DatabaseURL selects the backend by scheme: postgres://, mysql://,
	// anything else is treated as a SQLite DSN.
	DatabaseURL string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string

	// Sessions
	SessionTTL   time.Duration
	CookieSecure bool

	// JWT signing secret for the JSON API. The API is disabled when empty.
	JWTSecret string

	// Seeded on first run when no user with AdminUsername exists.
	AdminUsername string
	AdminPassword string

	// DisplayTZ is the IANA zone feedings are grouped and rendered in.
	DisplayTZ string
	location  *time.Location
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg, err := FromViper(newViper())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// FromViper builds a Config from v, applying defaults for unset keys.
func FromViper(v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("DATABASE_URL", "file:feeding.db?_pragma=busy_timeout(5000)")
	v.SetDefault("PORT", ":5000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("DEBUG", false)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "password")
	v.SetDefault("DISPLAY_TZ", "UTC")

	cfg := &Config{
		DatabaseURL:   v.GetString("DATABASE_URL"),
		Debug:         v.GetBool("DEBUG"),
		Port:          v.GetString("PORT"),
		TLSDomains:    splitTrimmed(v.GetString("TLS_DOMAINS")),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		AdminUsername: strings.TrimSpace(v.GetString("ADMIN_USERNAME")),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		DisplayTZ:     v.GetString("DISPLAY_TZ"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL must not be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set"))
	}
	loc, err := time.LoadLocation(c.DisplayTZ)
	if err != nil {
		errs = append(errs, fmt.Errorf("DISPLAY_TZ: %w", err))
	}
	c.location = loc
	return errors.Join(errs...)
}

// Location returns the display time zone, UTC if Validate has not run.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// APIEnabled reports whether the bearer-token JSON API should be mounted.
func (c *Config) APIEnabled() bool {
	return c.JWTSecret != ""
}

// UseAutoTLS reports whether the server should obtain certificates via ACME.
func (c *Config) UseAutoTLS() bool {
	return !c.Debug && len(c.TLSDomains) > 0
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
