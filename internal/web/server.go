package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Prithvi-997/origin-brew/internal/album"
	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/web/handlers"
	"github.com/Prithvi-997/origin-brew/internal/web/middleware"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	generator  *album.Generator
	router     *chi.Mux
	httpServer *http.Server
	jobManager *handlers.JobManager
	logger     *log.Logger
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, generator *album.Generator, port int, host string, logger *log.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:     cfg,
		generator:  generator,
		router:     r,
		jobManager: handlers.NewJobManager(),
		logger:     logger,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and slow planners
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting web server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server. Running album jobs are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")
	for _, job := range s.jobManager.ListJobs() {
		job.Cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
