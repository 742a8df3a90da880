package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalsink/vitalsink/internal/ingest"
	"github.com/vitalsink/vitalsink/internal/models"
	"github.com/vitalsink/vitalsink/internal/storage"
)

// Ingester runs an event batch through the normalization pipeline.
type Ingester interface {
	Ingest(ctx context.Context, events []models.HealthEvent, ownerID int) (*ingest.Result, error)
}

// OwnerDirectory resolves login names to owner IDs.
type OwnerDirectory interface {
	GetOrCreateOwner(ctx context.Context, login, displayName string) (int, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	ing    Ingester
	owners OwnerDirectory
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, ing Ingester, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		ing:    ing,
		owners: db,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Write endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})
	s.router.Route("/api/v1/profile", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Put("/", s.handleUpsertProfile)
	})

	// Read API endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/sleep", s.handleQuerySleep)
	s.router.Get("/api/v1/sleep/summary", s.handleSleepSummary)
	s.router.Get("/api/v1/measurements", s.handleQueryMeasurements)
	s.router.Get("/api/v1/categories", s.handleListCategories)
	s.router.Get("/api/v1/exercises", s.handleQueryExercises)
	s.router.Get("/api/v1/checkins", s.handleQueryCheckIns)
}
