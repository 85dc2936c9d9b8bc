package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/feedlog/auth"
	"github.com/padraicbc/feedlog/metrics"
	mw "github.com/padraicbc/feedlog/middleware"
	"github.com/padraicbc/feedlog/models"
	"github.com/padraicbc/feedlog/store"
)

const flashCookie = "flash"

// Settings are the request-independent knobs handlers need.
type Settings struct {
	// Location feedings are grouped in and form times are parsed in.
	Location *time.Location
	// CookieSecure marks session and flash cookies Secure.
	CookieSecure bool
	// JWTKey signs API tokens.
	JWTKey []byte
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	users    *store.Users
	feedings *store.Feedings
	auth     *auth.Authenticator
	metrics  *metrics.Collector
	settings Settings
}

// New creates a Handler.
func New(users *store.Users, feedings *store.Feedings, authn *auth.Authenticator, m *metrics.Collector, s Settings) *Handler {
	if s.Location == nil {
		s.Location = time.UTC
	}
	return &Handler{users: users, feedings: feedings, auth: authn, metrics: m, settings: s}
}

// view is the data every template receives.
type view struct {
	Title    string
	User     *models.User
	Flash    string
	Error    string
	CSRF     string
	Username string
	Groups   []store.DayGroup
}

// render fills the per-request fields of v and renders page.
func (h *Handler) render(c echo.Context, code int, page string, v view) error {
	v.User = mw.CurrentUser(c)
	v.CSRF, _ = c.Get("csrf").(string)
	if v.Flash == "" {
		v.Flash = h.popFlash(c)
	}
	return c.Render(code, page, v)
}

// redirectWithFlash stores msg for the next rendered page and redirects.
func (h *Handler) redirectWithFlash(c echo.Context, to, msg string) error {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   h.settings.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, to)
}

func (h *Handler) popFlash(c echo.Context) string {
	cookie, err := c.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.settings.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}

func (h *Handler) changed(op string) {
	if h.metrics != nil {
		h.metrics.FeedingChanged(op)
	}
}
