package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/storage"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu        sync.Mutex
	users     map[string]int
	workouts  map[uuid.UUID]models.WorkoutRow
	timelines map[uuid.UUID]models.TimelineRow
	logs      []storage.ImportLog
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]int{"local": 1},
		workouts:  map[uuid.UUID]models.WorkoutRow{},
		timelines: map[uuid.UUID]models.TimelineRow{},
	}
}

func (m *memStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.users[login]; ok {
		return id, nil
	}
	id := len(m.users) + 1
	m.users[login] = id
	return id, nil
}

func (m *memStore) InsertWorkout(_ context.Context, row models.WorkoutRow) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workouts {
		if w.UserID == row.UserID && w.Name == row.Name {
			return false, nil
		}
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	m.workouts[row.ID] = row
	return true, nil
}

func (m *memStore) UpdateWorkout(_ context.Context, row models.WorkoutRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.workouts[row.ID]; !ok || w.UserID != row.UserID {
		return fmt.Errorf("workout %s: %w", row.ID, storage.ErrNotFound)
	}
	m.workouts[row.ID] = row
	return nil
}

func (m *memStore) ListWorkouts(_ context.Context, userID int) ([]models.WorkoutRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WorkoutRow
	for _, w := range m.workouts {
		if w.UserID == userID {
			w.Definition = nil
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memStore) GetWorkout(_ context.Context, id uuid.UUID, userID int) (*models.WorkoutRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok || w.UserID != userID {
		return nil, fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	return &w, nil
}

func (m *memStore) DeleteWorkout(_ context.Context, id uuid.UUID, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok || w.UserID != userID {
		return fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	delete(m.workouts, id)
	return nil
}

func (m *memStore) InsertTimeline(_ context.Context, row *models.TimelineRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[row.WorkoutID]
	if !ok || w.UserID != row.UserID {
		return fmt.Errorf("workout %s: %w", row.WorkoutID, storage.ErrNotFound)
	}
	m.timelines[row.ID] = *row
	return nil
}

func (m *memStore) GetTimeline(_ context.Context, id uuid.UUID, userID int) (*models.TimelineRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timelines[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("timeline %s: %w", id, storage.ErrNotFound)
	}
	return &t, nil
}

func (m *memStore) ListTimelines(_ context.Context, workoutID uuid.UUID, userID, _ int) ([]models.TimelineRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TimelineRow
	for _, t := range m.timelines {
		if t.WorkoutID == workoutID && t.UserID == userID {
			t.Events = nil
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetDataStats(_ context.Context, userID int) (*storage.DataStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &storage.DataStats{}
	for _, w := range m.workouts {
		if w.UserID == userID {
			s.TotalWorkouts++
		}
	}
	for _, t := range m.timelines {
		if t.UserID == userID {
			s.TotalTimelines++
			s.TotalShots += int64(t.Stats.TotalShots)
		}
	}
	return s, nil
}

func (m *memStore) InsertImportLog(_ context.Context, log storage.ImportLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return int64(len(m.logs)), nil
}

func (m *memStore) QueryImportLogs(_ context.Context, userID, _ int) ([]storage.ImportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ImportLog
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}
