package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/feedlog/models"
	"github.com/padraicbc/feedlog/store"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session"

const userKey = "user"

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// RequireSession lets the request through only when the session cookie
// resolves to a user. Anything else is redirected to loginPath.
func RequireSession(resolver SessionResolver, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusFound, loginPath)
			}

			user, err := resolver.Resolve(c.Request().Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, store.ErrSessionInvalid) {
					zap.L().Error("resolve session", zap.Error(err))
					return echo.NewHTTPError(http.StatusInternalServerError, "session lookup failed")
				}
				ClearSessionCookie(c, c.IsTLS())
				return c.Redirect(http.StatusFound, loginPath)
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by RequireSession, or nil.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

// SetSessionCookie writes the session token for the remaining lifetime of sess.
func SetSessionCookie(c echo.Context, sess *models.Session, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
