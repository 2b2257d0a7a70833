package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/shotcaller/internal/models"
)

// InsertWorkout inserts a workout row. Returns true if inserted, false if the
// user already has a workout with the same name.
func (db *DB) InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, patterns, definition, source)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id, name) DO NOTHING`,
		row.ID, row.UserID, row.Name, row.Patterns, []byte(row.Definition), row.Source)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateWorkout replaces a workout's definition.
func (db *DB) UpdateWorkout(ctx context.Context, row models.WorkoutRow) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workouts SET name = $3, patterns = $4, definition = $5, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		row.ID, row.UserID, row.Name, row.Patterns, []byte(row.Definition))
	if err != nil {
		return fmt.Errorf("updating workout %s: %w", row.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout %s: %w", row.ID, ErrNotFound)
	}
	return nil
}

// ListWorkouts returns a user's workouts without their definitions, newest first.
func (db *DB) ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, patterns, source, created_at, updated_at
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Patterns, &w.Source, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkout retrieves a single workout including its definition.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*models.WorkoutRow, error) {
	var w models.WorkoutRow
	var def []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, patterns, definition, source, created_at, updated_at
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID).Scan(&w.ID, &w.UserID, &w.Name, &w.Patterns, &def, &w.Source, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "workout "+workoutID.String())
	}
	w.Definition = def
	return &w, nil
}

// DeleteWorkout removes a workout and, by cascade, its stored timelines.
func (db *DB) DeleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`, workoutID, userID)
	if err != nil {
		return fmt.Errorf("deleting workout %s: %w", workoutID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout %s: %w", workoutID, ErrNotFound)
	}
	return nil
}
