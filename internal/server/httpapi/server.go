// Package httpapi exposes the journaling services over a JSON HTTP API under
// /api/v1. Errors cross this boundary as {"success": false, "error": ...}
// envelopes with mapped status codes.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mweller/jotter/internal/logging"
	"github.com/mweller/jotter/internal/server/services"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	users     *services.UserService
	entries   *services.EntryService
	pipeline  *services.PipelineService
	insights  *services.InsightService
	moods     *services.MoodService
	taxonomy  *services.TaxonomyService
	jwtSecret []byte
	logger    logging.Logger
}

// NewServer constructs a Server over the given services.
func NewServer(users *services.UserService, entries *services.EntryService,
	pipeline *services.PipelineService, insights *services.InsightService,
	moods *services.MoodService, taxonomy *services.TaxonomyService,
	jwtSecret []byte, logger logging.Logger) *Server {
	return &Server{
		users:     users,
		entries:   entries,
		pipeline:  pipeline,
		insights:  insights,
		moods:     moods,
		taxonomy:  taxonomy,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/api/v1/health", s.handleHealth)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.Authenticate)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateEntry)
			r.Post("/text", s.handleSaveText)
			r.Post("/audio", s.handleProcessAudio)
			r.Get("/search", s.handleSearchEntries)
			r.Get("/mood", s.handleEntriesByMood)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetEntry)
				r.Put("/", s.handleUpdateEntry)
				r.Delete("/", s.handleDeleteEntry)
				r.Post("/summarize", s.handleSummarize)
				r.Get("/insight", s.handleGetInsight)
			})
		})

		r.Route("/moods", func(r chi.Router) {
			r.Post("/", s.handleLogMood)
			r.Get("/", s.handleMoodHistory)
			r.Get("/daily", s.handleMoodDaily)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
		})

		r.Get("/patterns", s.handleListPatterns)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
