package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored workouts and
// generated timelines.
type DataStats struct {
	TotalWorkouts   int64              `json:"total_workouts"`
	TotalTimelines  int64              `json:"total_timelines"`
	TotalShots      int64              `json:"total_shots"`
	TotalSeconds    float64            `json:"total_seconds"`
	LatestTimeline  *time.Time         `json:"latest_timeline"`
	TimelinesByWork []WorkoutUsageStat `json:"timelines_by_workout"`
}

// WorkoutUsageStat summarizes the timelines generated for one workout.
type WorkoutUsageStat struct {
	Name          string  `json:"name"`
	Count         int64   `json:"count"`
	TotalDuration float64 `json:"total_duration_sec"`
	AvgShots      float64 `json:"avg_shots"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM((stats->>'totalShots')::bigint), 0),
		        COALESCE(SUM((stats->>'totalDuration')::double precision), 0),
		        MAX(created_at)
		 FROM timelines WHERE user_id = $1`, userID,
	).Scan(&stats.TotalTimelines, &stats.TotalShots, &stats.TotalSeconds, &stats.LatestTimeline)
	if err != nil {
		return nil, fmt.Errorf("summarizing timelines: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT w.name, COUNT(t.id),
		        COALESCE(SUM((t.stats->>'totalDuration')::double precision), 0),
		        COALESCE(AVG((t.stats->>'totalShots')::double precision), 0)
		 FROM workouts w
		 JOIN timelines t ON t.workout_id = w.id
		 WHERE w.user_id = $1
		 GROUP BY w.name
		 ORDER BY COUNT(t.id) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying timelines by workout: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutUsageStat
		if err := rows.Scan(&s.Name, &s.Count, &s.TotalDuration, &s.AvgShots); err != nil {
			return nil, fmt.Errorf("scanning workout usage stat: %w", err)
		}
		stats.TimelinesByWork = append(stats.TimelinesByWork, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
