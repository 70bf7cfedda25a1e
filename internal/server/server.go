// Package server wires the application together: storage backend,
// services, handlers, middleware and routes. main.go stays minimal —
// it loads config and calls Start.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	goredis "github.com/go-redis/redis/v8"

	"github.com/rajnsunny/SnipStash/internal/auth"
	"github.com/rajnsunny/SnipStash/internal/handler"
	"github.com/rajnsunny/SnipStash/internal/middleware"
	"github.com/rajnsunny/SnipStash/internal/repository"
	redisRepo "github.com/rajnsunny/SnipStash/internal/repository/redis"
	sqliteRepo "github.com/rajnsunny/SnipStash/internal/repository/sqlite"
	"github.com/rajnsunny/SnipStash/internal/service"
)

// Config holds everything the server needs to start. It's filled from
// the environment in cmd/server.
type Config struct {
	Port      int
	JWTSecret string

	// Store selects the persistence backend: "sqlite" (default) or
	// "redis".
	Store     string
	DBPath    string
	RedisAddr string

	// GitHub OAuth is optional; the routes are only mounted when a
	// client ID is configured.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the storage backend. The backend is closed
// during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	store  io.Closer
}

// store bundles the two repository views of a backend with its Closer.
type storeBackend struct {
	snippets repository.SnippetRepository
	users    repository.UserRepository
	closer   io.Closer
}

// openStore creates the configured persistence backend. Both backends
// implement the snippet and user repository interfaces.
func openStore(cfg Config, logger *slog.Logger) (*storeBackend, error) {
	switch cfg.Store {
	case "", "sqlite":
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		logger.Info("storage ready", slog.String("backend", "sqlite"), slog.String("path", cfg.DBPath))
		return &storeBackend{snippets: db, users: db, closer: db}, nil

	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		store := redisRepo.New(client)
		logger.Info("storage ready", slog.String("backend", "redis"), slog.String("addr", cfg.RedisAddr))
		return &storeBackend{snippets: store, users: store, closer: client}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q (want sqlite or redis)", cfg.Store)
	}
}

// New creates a Server with the full dependency chain assembled:
// storage → services → handlers → routes. Each layer only receives the
// interfaces it needs.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	backend, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		backend.closer.Close()
		return nil, err
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if cfg.GitHubClientID != "" {
		github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	}

	snippetSvc := service.NewSnippetService(backend.snippets, logger)
	authSvc := service.NewAuthService(backend.users, tokens, passwords, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  backend.closer,
	}
	s.setupRoutes(
		handler.NewSnippetHandler(snippetSvc, logger),
		handler.NewAuthHandler(authSvc, github, logger),
		tokens,
		github != nil,
	)

	return s, nil
}

// setupRoutes mounts middleware and all route handlers. Everything
// under /api/snippets and /api/auth/me requires a valid token.
func (s *Server) setupRoutes(
	snippets *handler.SnippetHandler,
	authH *handler.AuthHandler,
	tokens *auth.TokenService,
	withOAuth bool,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authH.HandleRegister)
		r.Post("/login", authH.HandleLogin)
		r.Post("/logout", authH.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authH.HandleMe)
		})
	})

	if withOAuth {
		s.router.Get("/auth/github/login", authH.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authH.HandleGitHubCallback)
	}

	s.router.Route("/api/snippets", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/", snippets.HandleList)
		r.Post("/", snippets.HandleCreate)
		// /search must be registered before /{id} would otherwise
		// swallow it; chi routes static segments first regardless, but
		// keeping it here makes the intent obvious.
		r.Get("/search", snippets.HandleSearch)
		r.Get("/{id}", snippets.HandleGet)
		r.Put("/{id}", snippets.HandleUpdate)
		r.Delete("/{id}", snippets.HandleDelete)
	})
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Close releases the storage backend.
func (s *Server) Close() error { return s.store.Close() }

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s,
// close the storage backend.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
