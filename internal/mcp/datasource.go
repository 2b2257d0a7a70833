package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRow, error)
	GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*models.WorkoutRow, error)
	InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error)
	InsertTimeline(ctx context.Context, row *models.TimelineRow) error
	GetTimeline(ctx context.Context, timelineID uuid.UUID, userID int) (*models.TimelineRow, error)
	ListTimelines(ctx context.Context, workoutID uuid.UUID, userID, limit int) ([]models.TimelineRow, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
