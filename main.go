package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/feedlog/auth"
	"github.com/padraicbc/feedlog/config"
	"github.com/padraicbc/feedlog/db"
	"github.com/padraicbc/feedlog/handlers"
	applog "github.com/padraicbc/feedlog/logger"
	"github.com/padraicbc/feedlog/metrics"
	"github.com/padraicbc/feedlog/server"
	"github.com/padraicbc/feedlog/store"
	"github.com/padraicbc/feedlog/web"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()
	bdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		logger.Fatal("open database failed", zap.String("backend", string(db.BackendFor(cfg.DatabaseURL))), zap.Error(err))
	}
	defer bdb.Close()

	if err := db.CreateTables(ctx, bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	users := store.NewUsers(bdb, 0)
	sessions := store.NewSessions(bdb)
	feedings := store.NewFeedings(bdb)

	created, err := users.BootstrapAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Fatal("bootstrap admin failed", zap.Error(err))
	}
	if created {
		logger.Info("created default account", zap.String("username", cfg.AdminUsername))
	}
	if n, err := sessions.DeleteExpired(ctx); err != nil {
		logger.Warn("purge expired sessions failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("purged expired sessions", zap.Int64("count", n))
	}

	renderer, err := web.NewRenderer(cfg.Location())
	if err != nil {
		logger.Fatal("parse templates failed", zap.Error(err))
	}

	authn := auth.New(users, sessions, cfg.SessionTTL)
	m := metrics.New()
	h := handlers.New(users, feedings, authn, m, handlers.Settings{
		Location:     cfg.Location(),
		CookieSecure: cfg.CookieSecure || cfg.UseAutoTLS(),
		JWTKey:       cfg.JWTKey(),
	})

	var jwtKey []byte
	if cfg.APIEnabled() {
		jwtKey = cfg.JWTKey()
	} else {
		logger.Info("JWT_SECRET not set, JSON API disabled")
	}

	e := server.New(h, server.Options{
		Logger:       logger,
		Metrics:      m,
		Renderer:     renderer,
		Sessions:     authn,
		Pinger:       bdb,
		JWTKey:       jwtKey,
		CookieSecure: cfg.CookieSecure || cfg.UseAutoTLS(),
	})

	s := &http.Server{
		Addr:         cfg.Port,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serve := func() error {
		logger.Info("starting server", zap.String("addr", s.Addr), zap.Bool("debug", cfg.Debug))
		return s.ListenAndServe()
	}
	if cfg.UseAutoTLS() {
		autoTLS := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache(".cache"),
			HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
		}
		s.Addr = ":443"
		s.TLSConfig = autoTLS.TLSConfig()
		serve = func() error {
			logger.Info("starting tls server", zap.Strings("domains", cfg.TLSDomains))
			return s.ListenAndServeTLS("", "")
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() { errc <- serve() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", zap.Error(err))
			os.Exit(1)
		}
	case <-stop:
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}
