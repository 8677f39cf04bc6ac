// Package server provides the HTTP server and routing for the portfolio API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio/internal/di"
	accountshandlers "github.com/aristath/portfolio/internal/modules/accounts/handlers"
	"github.com/aristath/portfolio/internal/modules/auth"
	authhandlers "github.com/aristath/portfolio/internal/modules/auth/handlers"
	institutionshandlers "github.com/aristath/portfolio/internal/modules/institutions/handlers"
	instrumentshandlers "github.com/aristath/portfolio/internal/modules/instruments/handlers"
	transactionshandlers "github.com/aristath/portfolio/internal/modules/transactions/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	var journalReader JournalReader
	if cfg.Container.Journal != nil {
		journalReader = cfg.Container.Journal
	}

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		container:      cfg.Container,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.Container.PortfolioDB, journalReader),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	c := s.container

	authHandler := authhandlers.NewHandler(c.AuthService, s.log)
	institutionHandler := institutionshandlers.NewHandler(c.InstitutionRepo, s.log)
	instrumentHandler := instrumentshandlers.NewHandler(c.InstrumentService, s.log)
	accountHandler := accountshandlers.NewHandler(c.AccountService, s.log)
	transactionHandler := transactionshandlers.NewHandler(c.TransactionService, s.log)

	s.router.Route("/api", func(r chi.Router) {
		// Public: registration, login, liveness
		authHandler.RegisterPublicRoutes(r)
		r.Get("/system/health", s.systemHandlers.HandleHealth)

		// Everything else needs a bearer token
		r.Group(func(r chi.Router) {
			r.Use(c.AuthMiddleware.RequireUser)

			authHandler.RegisterRoutes(r)
			institutionHandler.RegisterRoutes(r)
			instrumentHandler.RegisterRoutes(r)
			accountHandler.RegisterRoutes(r)
			transactionHandler.RegisterRoutes(r)

			r.Get("/system/stats", s.systemHandlers.HandleStats)
			r.With(auth.RequireAdmin).Get("/system/journal", s.systemHandlers.HandleJournal)
		})
	})
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
