// Package server assembles the echo instance: middleware, renderer and routes.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/padraicbc/feedlog/handlers"
	applog "github.com/padraicbc/feedlog/logger"
	"github.com/padraicbc/feedlog/metrics"
	mw "github.com/padraicbc/feedlog/middleware"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// Options are the collaborators New wires into the router.
type Options struct {
	Logger   *zap.Logger
	Metrics  *metrics.Collector
	Renderer echo.Renderer
	Sessions mw.SessionResolver

	// Pinger backs /healthz; usually the *bun.DB.
	Pinger interface {
		PingContext(ctx context.Context) error
	}

	// JWTKey enables the /api group when non-empty.
	JWTKey       []byte
	CookieSecure bool
}

// New returns a fully routed echo instance.
func New(h *handlers.Handler, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = opts.Renderer
	e.HTTPErrorHandler = h.HTTPErrorHandler

	if opts.Logger != nil {
		e.Use(applog.RequestLogger(opts.Logger))
	}
	e.Use(echomw.Recover())
	if opts.Metrics != nil {
		e.Use(opts.Metrics.Middleware())
	}
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit("64K"))
	e.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
		Skipper:        skipCSRF,
		TokenLookup:    "form:csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   opts.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	// Public
	e.GET("/register", h.RegisterForm)
	e.POST("/register", h.Register)
	e.GET(LoginPath, h.LoginForm)
	e.POST(LoginPath, h.Login)
	e.GET("/logout", h.Logout)

	e.GET("/healthz", func(c echo.Context) error {
		if opts.Pinger != nil {
			if err := opts.Pinger.PingContext(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	})
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	// Protected – require a valid session cookie
	guard := mw.RequireSession(opts.Sessions, LoginPath)
	e.GET("/", h.Index, guard)
	e.POST("/add", h.Add, guard)
	e.POST("/edit/:id", h.Edit, guard)
	e.POST("/delete/:id", h.Delete, guard)

	// Protected – require valid JWT in Authorization header
	if len(opts.JWTKey) > 0 {
		e.POST("/api/signin", h.Signin)
		api := e.Group("/api", mw.JWT(opts.JWTKey))
		api.GET("/feedings", h.APIFeedings)
		api.POST("/feedings", h.APICreateFeeding)
		api.PUT("/feedings/:id", h.APIUpdateFeeding)
		api.DELETE("/feedings/:id", h.APIDeleteFeeding)
	}

	return e
}

// skipCSRF exempts bearer-token and machine endpoints; browsers never post there.
func skipCSRF(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/api/") || p == "/healthz" || p == "/metrics"
}
