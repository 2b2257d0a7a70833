package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a stored workout definition. Definition holds the
// normalized JSON document as decoded by DecodeWorkout.
type WorkoutRow struct {
	ID         uuid.UUID       `json:"id"`
	UserID     int             `json:"user_id"`
	Name       string          `json:"name"`
	Patterns   int             `json:"patterns"`
	Definition json.RawMessage `json:"definition,omitempty"`
	Source     string          `json:"source,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TimelineRow is a generated timeline persisted for later playback.
type TimelineRow struct {
	ID        uuid.UUID       `json:"id"`
	WorkoutID uuid.UUID       `json:"workout_id"`
	UserID    int             `json:"user_id"`
	Seed      *int64          `json:"seed,omitempty"`
	Stats     TimelineStats   `json:"stats"`
	Events    []TimelineEvent `json:"events,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Decode parses the stored definition back into a Workout and stamps the
// row's ID on it.
func (r WorkoutRow) Decode() (*Workout, error) {
	w, err := DecodeWorkout(r.Definition)
	if err != nil {
		return nil, err
	}
	w.ID = r.ID.String()
	return w, nil
}
