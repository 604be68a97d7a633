package web

import (
	"github.com/Prithvi-997/origin-brew/internal/constants"
	"github.com/Prithvi-997/origin-brew/internal/web/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// syncTimeout bounds synchronous generation and edit requests. Jobs and
// their event streams are not limited.
const syncTimeout = 2 * constants.DefaultPlannerTimeout

func (s *Server) setupRoutes() {
	configHandler := handlers.NewConfigHandler(s.config, s.generator.Catalog())
	layoutsHandler := handlers.NewLayoutsHandler(s.generator.Catalog())
	albumsHandler := handlers.NewAlbumsHandler(s.generator, s.jobManager, s.logger)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Config
		r.Get("/config", configHandler.Get)

		// Layouts
		r.Get("/layouts", layoutsHandler.List)
		r.Get("/layouts/{id}", layoutsHandler.Get)
		r.Get("/layouts/{id}/template", layoutsHandler.Template)

		// Albums
		r.With(chiMiddleware.Timeout(syncTimeout)).Post("/albums/generate", albumsHandler.Generate)
		r.With(chiMiddleware.Timeout(syncTimeout)).Post("/albums/edit", albumsHandler.Edit)

		// Album jobs (long-running generation)
		r.Post("/albums/jobs", albumsHandler.StartJob)
		r.Get("/albums/jobs/{jobId}", albumsHandler.JobStatus)
		r.Get("/albums/jobs/{jobId}/events", albumsHandler.Events)
		r.Delete("/albums/jobs/{jobId}", albumsHandler.CancelJob)
	})
}
