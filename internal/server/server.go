package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/storage"
	"github.com/meltforce/shotcaller/internal/timeline"
)

// Store is the persistence the HTTP handlers need. *storage.DB satisfies it.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error)
	UpdateWorkout(ctx context.Context, row models.WorkoutRow) error
	ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRow, error)
	GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*models.WorkoutRow, error)
	DeleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int) error
	InsertTimeline(ctx context.Context, row *models.TimelineRow) error
	GetTimeline(ctx context.Context, timelineID uuid.UUID, userID int) (*models.TimelineRow, error)
	ListTimelines(ctx context.Context, workoutID uuid.UUID, userID, limit int) ([]models.TimelineRow, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     Store
	gen    timeline.Options
	log    *slog.Logger
	apiKey string
	whois  WhoIser
	mcp    http.Handler
	router chi.Router
}

// New creates a new Server with all routes configured. gen carries the
// generator bounds applied to every timeline request.
func New(db Store, gen timeline.Options, apiKey string, log *slog.Logger) *Server {
	gen.Logger = log
	s := &Server{
		db:     db,
		gen:    gen,
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

// SetTailscale switches identity from the API key to tailnet WhoIs lookups.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Group(func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/api/v1/me", s.handleMe)
		r.Post("/api/v1/validate", s.handleValidate)
		r.Post("/api/v1/timeline", s.handleGenerate)

		r.Get("/api/v1/workouts", s.handleListWorkouts)
		r.Post("/api/v1/workouts", s.handleCreateWorkout)
		r.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
		r.Put("/api/v1/workouts/{id}", s.handleUpdateWorkout)
		r.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)
		r.Get("/api/v1/workouts/{id}/timelines", s.handleListTimelines)
		r.Post("/api/v1/workouts/{id}/timelines", s.handleGenerateStored)

		r.Post("/api/v1/timelines", s.handleSaveTimeline)
		r.Get("/api/v1/timelines/{id}", s.handleGetTimeline)

		r.Post("/api/v1/import", s.handleImport)
		r.Get("/api/v1/imports", s.handleImportLogs)
		r.Get("/api/v1/stats", s.handleStats)

		r.Handle("/mcp", http.HandlerFunc(s.handleMCP))
	})
}
