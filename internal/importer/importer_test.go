package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/storage"
)

type fakeStore struct {
	workouts map[string]models.WorkoutRow
	logs     []storage.ImportLog
	failOn   string
}

func newFakeStore() *fakeStore {
	return &fakeStore{workouts: map[string]models.WorkoutRow{}}
}

func (f *fakeStore) InsertWorkout(_ context.Context, row models.WorkoutRow) (bool, error) {
	if row.Name == f.failOn {
		return false, errors.New("connection reset")
	}
	if _, ok := f.workouts[row.Name]; ok {
		return false, nil
	}
	f.workouts[row.Name] = row
	return true, nil
}

func (f *fakeStore) InsertImportLog(_ context.Context, log storage.ImportLog) (int64, error) {
	f.logs = append(f.logs, log)
	return int64(len(f.logs)), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const shotJSON = `{"name": "Ghosting", "patterns": [{"id": "p1", "entries": [{"type": "shot", "id": "s1"}]}]}`

const shotYAML = `
patterns:
  - id: p1
    entries:
      - {type: shot, id: s1, config: {repeatCount: {min: 1, max: 3}}}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TestImportDirectory verifies that workout files are picked up recursively,
// other files are ignored, and invalid documents are counted.
func TestImportDirectory(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ghosting.json":           shotJSON,
		"drills/footwork.yaml":    shotYAML,
		"drills/broken.yml":       "patterns: [",
		"notes.txt":               "not a workout",
		".hidden/ignored.json":    shotJSON,
		"drills/no_patterns.json": `{"name": "Empty", "patterns": []}`,
	})
	db := newFakeStore()
	stats, err := New(db, discardLogger(), false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesSeen != 4 {
		t.Errorf("files seen = %d, want 4", stats.FilesSeen)
	}
	if stats.WorkoutsInserted != 2 {
		t.Errorf("inserted = %d, want 2", stats.WorkoutsInserted)
	}
	if stats.WorkoutsInvalid != 2 || len(stats.Rejected) != 2 {
		t.Errorf("invalid = %d rejected = %d, want 2", stats.WorkoutsInvalid, len(stats.Rejected))
	}
	row, ok := db.workouts["footwork"]
	if !ok {
		t.Fatalf("YAML workout not named after its file: %v", db.workouts)
	}
	if row.Source != filepath.Join("drills", "footwork.yaml") || row.Patterns != 1 || row.UserID != 1 {
		t.Errorf("row = %+v", row)
	}
}

// TestImportStoresNormalizedDefinition verifies the stored definition is
// canonical JSON that decodes back to the same workout.
func TestImportStoresNormalizedDefinition(t *testing.T) {
	db := newFakeStore()
	imp := New(db, discardLogger(), false).ForUser(7)
	if err := imp.ImportDocument(context.Background(), "footwork.yaml", []byte(shotYAML)); err != nil {
		t.Fatal(err)
	}
	row := db.workouts["footwork"]
	if row.UserID != 7 {
		t.Errorf("user = %d, want 7", row.UserID)
	}
	w, err := row.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rc := w.Patterns[0].Entries[0].Config.RepeatCount
	if rc == nil || *rc != models.RandomRepeat(1, 3) {
		t.Errorf("repeat = %+v, want random 1..3", rc)
	}
}

// TestImportDuplicateSkipped verifies a second import of the same workout is
// counted as skipped rather than inserted.
func TestImportDuplicateSkipped(t *testing.T) {
	db := newFakeStore()
	imp := New(db, discardLogger(), false)
	ctx := context.Background()
	for range 2 {
		if err := imp.ImportDocument(ctx, "ghosting.json", []byte(shotJSON)); err != nil {
			t.Fatal(err)
		}
	}
	if s := imp.Stats(); s.WorkoutsInserted != 1 || s.WorkoutsSkipped != 1 {
		t.Errorf("stats = %+v, want 1 inserted 1 skipped", s)
	}
}

// TestImportDryRun verifies dry runs count but never write, including the
// import log.
func TestImportDryRun(t *testing.T) {
	db := newFakeStore()
	imp := New(db, discardLogger(), true)
	if err := imp.ImportDocument(context.Background(), "ghosting.json", []byte(shotJSON)); err != nil {
		t.Fatal(err)
	}
	imp.Record(context.Background(), "dir", nil, time.Second)
	if len(db.workouts) != 0 || len(db.logs) != 0 {
		t.Errorf("dry run wrote %d workouts and %d logs", len(db.workouts), len(db.logs))
	}
	if imp.Stats().WorkoutsInserted != 1 {
		t.Errorf("inserted = %d, want 1", imp.Stats().WorkoutsInserted)
	}
}

// TestImportStorageErrorStops verifies storage failures abort the import.
func TestImportStorageErrorStops(t *testing.T) {
	db := newFakeStore()
	db.failOn = "Ghosting"
	err := New(db, discardLogger(), false).ImportDocument(context.Background(), "g.json", []byte(shotJSON))
	if err == nil {
		t.Fatal("expected storage error")
	}
}

// TestRecordImportLog verifies the import log carries the counters and
// rejected documents.
func TestRecordImportLog(t *testing.T) {
	db := newFakeStore()
	imp := New(db, discardLogger(), false)
	ctx := context.Background()
	_ = imp.ImportDocument(ctx, "ok.json", []byte(shotJSON))
	_ = imp.ImportDocument(ctx, "bad.json", []byte(`{"name": "x"}`))
	imp.Record(ctx, "cli", errors.New("interrupted"), 1500*time.Millisecond)

	if len(db.logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(db.logs))
	}
	l := db.logs[0]
	if l.Status != "error" || l.ErrorMessage == nil || *l.ErrorMessage != "interrupted" {
		t.Errorf("status = %q err = %v", l.Status, l.ErrorMessage)
	}
	if l.FilesSeen != 2 || l.WorkoutsInserted != 1 || l.WorkoutsInvalid != 1 {
		t.Errorf("log counters = %+v", l)
	}
	if l.DurationMs == nil || *l.DurationMs != 1500 {
		t.Errorf("duration = %v, want 1500", l.DurationMs)
	}
	if l.Metadata == nil {
		t.Error("expected rejected documents in metadata")
	}
}

// TestIsWorkoutFile verifies the accepted extensions.
func TestIsWorkoutFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.json", true},
		{"b.YAML", true},
		{"c.yml", true},
		{"d.txt", false},
		{"e", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsWorkoutFile(tt.path); got != tt.want {
				t.Errorf("IsWorkoutFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
