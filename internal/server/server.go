package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rupayana/backend/internal/accounts"
	"github.com/rupayana/backend/internal/auth"
	"github.com/rupayana/backend/internal/config"
	"github.com/rupayana/backend/internal/events"
	"github.com/rupayana/backend/internal/http/handlers"
	"github.com/rupayana/backend/internal/ledger"
	"github.com/rupayana/backend/internal/middleware"
	"github.com/rupayana/backend/internal/reset"
	"github.com/rupayana/backend/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires the core components and returns a ready server. The store and
// publisher are constructed by the caller, which owns their lifecycle.
func New(cfg config.Config, store storage.Store, publisher events.Publisher) *Server {
	ledgerEngine := ledger.New(store, store, publisher)
	accountSvc := accounts.NewService(store, ledgerEngine, cfg.InitBalance)
	resetManager := reset.NewManager(store, publisher, cfg.ResetTokenTTL)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(accountSvc, tokenManager).Register(mux)
	handlers.NewLedgerHandler(ledgerEngine).Register(mux)
	handlers.NewResetHandler(resetManager).Register(mux)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
