package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	mw "github.com/padraicbc/feedlog/middleware"
	"github.com/padraicbc/feedlog/store"
)

const apiTokenTTL = 30 * 24 * time.Hour

type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// missing returns a user-facing message when either field is blank.
func (cr credentials) missing() string {
	switch {
	case strings.TrimSpace(cr.Username) == "" && strings.TrimSpace(cr.Password) == "":
		return "Username and password are required."
	case strings.TrimSpace(cr.Username) == "":
		return "Username is required."
	case strings.TrimSpace(cr.Password) == "":
		return "Password is required."
	}
	return ""
}

func formCredentials(c echo.Context) credentials {
	return credentials{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
	}
}

// RegisterForm shows the registration form.
func (h *Handler) RegisterForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "register", view{Title: "Register"})
}

// Register creates an account and sends the user to the login form.
func (h *Handler) Register(c echo.Context) error {
	creds := formCredentials(c)
	if msg := creds.missing(); msg != "" {
		return h.render(c, http.StatusUnprocessableEntity, "register", view{
			Title: "Register", Error: msg, Username: creds.Username,
		})
	}

	user, err := h.users.Register(c.Request().Context(), creds.Username, creds.Password)
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		return h.render(c, http.StatusConflict, "register", view{
			Title: "Register", Error: "A user with that username already exists.", Username: creds.Username,
		})
	case errors.Is(err, store.ErrValidation):
		return h.render(c, http.StatusUnprocessableEntity, "register", view{
			Title: "Register", Error: "Password is not acceptable.", Username: creds.Username,
		})
	case err != nil:
		return err
	}

	zap.L().Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return h.redirectWithFlash(c, "/login", "Registration successful. Please log in.")
}

// LoginForm shows the login form.
func (h *Handler) LoginForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "login", view{Title: "Log in"})
}

// Login opens a session and sets the session cookie.
func (h *Handler) Login(c echo.Context) error {
	creds := formCredentials(c)
	if msg := creds.missing(); msg != "" {
		return h.render(c, http.StatusUnprocessableEntity, "login", view{
			Title: "Log in", Error: msg, Username: creds.Username,
		})
	}

	sess, err := h.auth.Login(c.Request().Context(), creds.Username, creds.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		return h.render(c, http.StatusUnauthorized, "login", view{
			Title: "Log in", Error: "Incorrect username or password.", Username: creds.Username,
		})
	}
	if err != nil {
		return err
	}

	mw.SetSessionCookie(c, sess, h.settings.CookieSecure)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout destroys the session and returns to the login form.
func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(mw.SessionCookie); err == nil {
		if err := h.auth.Logout(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}
	mw.ClearSessionCookie(c, h.settings.CookieSecure)
	return h.redirectWithFlash(c, "/login", "You have been logged out.")
}

// Signin validates credentials and returns a JWT token valid for 30 days.
func (h *Handler) Signin(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if msg := creds.missing(); msg != "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, msg)
	}

	user, err := h.users.Verify(c.Request().Context(), creds.Username, creds.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect username or password")
	}
	if err != nil {
		return err
	}

	claims := &mw.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(apiTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.settings.JWTKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"token": tokenString})
}
