// Package server is the composition root: it wires the database,
// services, handlers, and middleware into a chi router and runs the
// HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/levkina/flashdeck/internal/auth"
	"github.com/levkina/flashdeck/internal/config"
	"github.com/levkina/flashdeck/internal/handler"
	"github.com/levkina/flashdeck/internal/markdown"
	"github.com/levkina/flashdeck/internal/middleware"
	sqliteRepo "github.com/levkina/flashdeck/internal/repository/sqlite"
	"github.com/levkina/flashdeck/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and assembles the whole dependency chain. Each
// layer only sees the one below it: handlers get services, services get
// repository interfaces, repositories get the connection.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.Handler)

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return err
	}

	cardRepo := sqliteRepo.NewCardRepo(s.db)
	tagRepo := sqliteRepo.NewTagRepo(s.db)
	categoryRepo := sqliteRepo.NewCategoryRepo(s.db)
	userRepo := sqliteRepo.NewUserRepo(s.db)

	md := markdown.NewRenderer()
	cardService := service.NewCardService(cardRepo, tagRepo, categoryRepo, s.logger)

	pageHandler := handler.NewPageHandler(renderer, cardService, md, s.logger)
	cardHandler := handler.NewCardHandler(renderer, cardService, md, s.logger)

	var (
		tokens      *auth.TokenService
		authService *service.AuthService
	)
	if s.config.AuthEnabled() {
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		authService = service.NewAuthService(
			userRepo,
			tokens,
			auth.NewPasswordService(),
			s.config.AdminPasswordHash,
			s.config.AdminLogins,
			s.logger,
		)
		s.router.Use(auth.OptionalAuth(tokens))
	} else {
		s.logger.Warn("JWT secret not set, running read-only without login routes")
	}

	// Public pages.
	s.router.Get("/", pageHandler.HandleIndex)
	s.router.Get("/about", pageHandler.HandleAbout)
	s.router.Get("/cards/catalog", pageHandler.HandleCatalog)
	s.router.Get("/cards/{id}", pageHandler.HandleCardDetail)
	s.router.Get("/tags/{id}", pageHandler.HandleCardsByTag)
	s.router.Get("/categories/{id}", pageHandler.HandleCardsByCategory)
	s.router.Post("/api/cards/{id}/add", cardHandler.HandleAddToDeck)

	if authService != nil {
		var provider *auth.GitHubProvider
		if s.config.OAuthEnabled() {
			provider = auth.NewGitHubProvider(
				s.config.GitHubClientID,
				s.config.GitHubClientSecret,
				s.config.GitHubCallbackURL,
			)
		}
		authHandler := handler.NewAuthHandler(renderer, authService, provider, s.logger)

		s.router.Get("/login", authHandler.HandleLoginPage)
		s.router.Post("/login", authHandler.HandleLocalLogin)
		s.router.Post("/logout", authHandler.HandleLogout)

		if provider != nil {
			s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
			s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
		}

		// Card authoring is admin only.
		s.router.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(tokens, authService))
			r.Get("/cards/add", cardHandler.HandleAddForm)
			r.Post("/cards/add", cardHandler.HandleAddSubmit)
			r.Post("/api/preview", cardHandler.HandlePreview)
			r.Post("/api/categories", cardHandler.HandleCreateCategory)
		})
	}

	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until SIGINT or SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, and
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
			slog.String("database", s.config.DBPath),
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
