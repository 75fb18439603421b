package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meltforce/liftlog/internal/analytics"
	"github.com/meltforce/liftlog/internal/ingest/alpha"
	"github.com/meltforce/liftlog/internal/metrics"
	"github.com/meltforce/liftlog/internal/repository"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	repo    *repository.Repository
	engine  *analytics.Engine
	alpha   *alpha.Provider
	metrics *metrics.Manager
	log     *slog.Logger
	apiKey  string
	router  chi.Router

	whoisMu sync.RWMutex
	whois   whoIser

	imports *importLog
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the mutating routes open.
func New(repo *repository.Repository, engine *analytics.Engine, alphaProvider *alpha.Provider, m *metrics.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		repo:    repo,
		engine:  engine,
		alpha:   alphaProvider,
		metrics: m,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
		imports: newImportLog(50),
	}
	s.routes()
	s.observeCollections()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Get("/exercises/{id}/stats", s.handleExerciseStats)
		r.Get("/exercises/{id}/progression", s.handleProgression)
		r.Get("/exercises/{id}/chart", s.handleChart)

		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/recent", s.handleRecentWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)

		r.Get("/stats", s.handleGeneralStats)
		r.Get("/progress", s.handleExerciseProgress)
		r.Get("/progressions", s.handleProgressions)
		r.Get("/chart/last", s.handleLastChart)
		r.Get("/one-rep-max", s.handleOneRepMax)

		r.Get("/export", s.handleExport)
		r.Get("/import-logs", s.handleImportLogs)

		// Writes (API key required when configured)
		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Post("/exercises", s.handleAddExercise)
			r.Put("/exercises/{id}", s.handleUpdateExercise)
			r.Delete("/exercises/{id}", s.handleRemoveExercise)

			r.Post("/workouts", s.handleAddWorkout)
			r.Post("/workouts/batch", s.handleAddWorkouts)
			r.Put("/workouts/{id}", s.handleEditWorkout)
			r.Delete("/workouts/{id}", s.handleRemoveWorkout)

			r.Post("/import", s.handleImport)
			r.Post("/reset", s.handleReset)
			r.Post("/ingest/alpha", s.handleAlphaIngest)
		})
	})
}

// SetMetrics exposes g on /metrics.
func (s *Server) SetMetrics(g prometheus.Gatherer) {
	s.router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// SetMCP mounts the MCP streamable HTTP endpoint on /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// SetTailscale resolves request identities through the tailnet. Without it
// every request is the local dev user.
func (s *Server) SetTailscale(lc whoIser) {
	s.whoisMu.Lock()
	defer s.whoisMu.Unlock()
	s.whois = lc
}

func (s *Server) observeCollections() {
	exercises, workouts := s.repo.Collections()
	s.metrics.ObserveCollections(len(exercises), len(workouts))
}
