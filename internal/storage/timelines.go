package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/shotcaller/internal/models"
)

// InsertTimeline stores a generated timeline. The workout must belong to the
// same user.
func (db *DB) InsertTimeline(ctx context.Context, row *models.TimelineRow) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	stats, err := json.Marshal(row.Stats)
	if err != nil {
		return fmt.Errorf("encoding timeline stats: %w", err)
	}
	events, err := json.Marshal(row.Events)
	if err != nil {
		return fmt.Errorf("encoding timeline events: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`INSERT INTO timelines (id, workout_id, user_id, seed, stats, events)
		 SELECT $1, w.id, w.user_id, $4::bigint, $5::jsonb, $6::jsonb
		 FROM workouts w WHERE w.id = $2 AND w.user_id = $3
		 RETURNING created_at`,
		row.ID, row.WorkoutID, row.UserID, row.Seed, stats, events).Scan(&row.CreatedAt)
	if err != nil {
		return notFound(err, "workout "+row.WorkoutID.String())
	}
	return nil
}

// GetTimeline retrieves a stored timeline with its events.
func (db *DB) GetTimeline(ctx context.Context, timelineID uuid.UUID, userID int) (*models.TimelineRow, error) {
	var t models.TimelineRow
	var stats, events []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT id, workout_id, user_id, seed, stats, events, created_at
		 FROM timelines
		 WHERE id = $1 AND user_id = $2`,
		timelineID, userID).Scan(&t.ID, &t.WorkoutID, &t.UserID, &t.Seed, &stats, &events, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err, "timeline "+timelineID.String())
	}
	if err := json.Unmarshal(stats, &t.Stats); err != nil {
		return nil, fmt.Errorf("decoding timeline stats: %w", err)
	}
	if err := json.Unmarshal(events, &t.Events); err != nil {
		return nil, fmt.Errorf("decoding timeline events: %w", err)
	}
	return &t, nil
}

// ListTimelines returns the most recent timelines of a workout without
// their events.
func (db *DB) ListTimelines(ctx context.Context, workoutID uuid.UUID, userID, limit int) ([]models.TimelineRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, user_id, seed, stats, created_at
		 FROM timelines
		 WHERE workout_id = $1 AND user_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		workoutID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying timelines: %w", err)
	}
	defer rows.Close()

	var result []models.TimelineRow
	for rows.Next() {
		var t models.TimelineRow
		var stats []byte
		if err := rows.Scan(&t.ID, &t.WorkoutID, &t.UserID, &t.Seed, &stats, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning timeline: %w", err)
		}
		if err := json.Unmarshal(stats, &t.Stats); err != nil {
			return nil, fmt.Errorf("decoding timeline stats: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
