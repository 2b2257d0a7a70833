package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/storage"
	"github.com/meltforce/shotcaller/internal/validate"
)

// Store is the subset of storage the importer writes to.
type Store interface {
	InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
}

// Rejection records why a document was not imported.
type Rejection struct {
	Source string           `json:"source"`
	Errors []validate.Error `json:"errors"`
}

// Stats tracks import progress.
type Stats struct {
	FilesSeen        int         `json:"files_seen"`
	FilesErrored     int         `json:"files_errored"`
	WorkoutsInserted int         `json:"workouts_inserted"`
	WorkoutsSkipped  int         `json:"workouts_skipped"`
	WorkoutsInvalid  int         `json:"workouts_invalid"`
	Rejected         []Rejection `json:"rejected,omitempty"`
}

// Importer validates workout documents and inserts them into the DB.
type Importer struct {
	db     Store
	log    *slog.Logger
	dryRun bool
	userID int
	stats  Stats
}

// New creates a new Importer writing as user 1.
func New(db Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, dryRun: dryRun, userID: 1}
}

// ForUser sets the owner of imported workouts.
func (imp *Importer) ForUser(userID int) *Importer {
	imp.userID = userID
	return imp
}

// Stats returns the counters accumulated so far.
func (imp *Importer) Stats() *Stats {
	return &imp.stats
}

// IsWorkoutFile reports whether a path has a workout document extension.
func IsWorkoutFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Import walks dir and imports every .json, .yaml and .yml file in
// lexical order. Unreadable or invalid files are counted and skipped.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsWorkoutFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return &imp.stats, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		data, err := os.ReadFile(f)
		if err != nil {
			imp.log.Warn("read failed", "file", f, "error", err)
			imp.stats.FilesSeen++
			imp.stats.FilesErrored++
			continue
		}
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			rel = filepath.Base(f)
		}
		if err := imp.ImportDocument(ctx, rel, data); err != nil {
			return &imp.stats, err
		}
	}
	return &imp.stats, nil
}

// ImportDocument validates and inserts one document. Validation failures
// and duplicates only update the stats; the returned error is reserved for
// storage failures.
func (imp *Importer) ImportDocument(ctx context.Context, source string, data []byte) error {
	imp.stats.FilesSeen++

	w, err := models.DecodeWorkout(data)
	if err != nil {
		imp.log.Warn("parse failed", "source", source, "error", err)
		imp.reject(source, []validate.Error{{Message: err.Error()}})
		return nil
	}
	if w.Name == "" {
		w.Name = nameFromSource(source)
	}
	if res := validate.Workout(w); !res.IsValid {
		imp.log.Warn("invalid workout", "source", source, "errors", len(res.Errors))
		imp.reject(source, res.Errors)
		return nil
	}

	if imp.dryRun {
		imp.stats.WorkoutsInserted++
		return nil
	}

	row, err := Row(w, imp.userID, source)
	if err != nil {
		return err
	}
	inserted, err := imp.db.InsertWorkout(ctx, row)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", source, err)
	}
	if inserted {
		imp.stats.WorkoutsInserted++
		imp.log.Info("workout imported", "source", source, "name", w.Name)
	} else {
		imp.stats.WorkoutsSkipped++
		imp.log.Info("workout already exists", "source", source, "name", w.Name)
	}
	return nil
}

// Record writes an import_logs entry for the run. Dry runs are not logged.
func (imp *Importer) Record(ctx context.Context, source string, importErr error, elapsed time.Duration) {
	if imp.dryRun {
		return
	}
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}
	durationMs := int(elapsed.Milliseconds())

	var meta *json.RawMessage
	if len(imp.stats.Rejected) > 0 {
		if b, err := json.Marshal(imp.stats.Rejected); err == nil {
			raw := json.RawMessage(b)
			meta = &raw
		}
	}

	entry := storage.ImportLog{
		UserID:           imp.userID,
		Source:           source,
		Status:           status,
		FilesSeen:        imp.stats.FilesSeen,
		WorkoutsInserted: imp.stats.WorkoutsInserted,
		WorkoutsSkipped:  imp.stats.WorkoutsSkipped,
		WorkoutsInvalid:  imp.stats.WorkoutsInvalid,
		DurationMs:       &durationMs,
		ErrorMessage:     errMsg,
		Metadata:         meta,
	}
	if _, err := imp.db.InsertImportLog(ctx, entry); err != nil {
		imp.log.Error("failed to log import", "source", source, "error", err)
	}
}

func (imp *Importer) reject(source string, errs []validate.Error) {
	imp.stats.WorkoutsInvalid++
	imp.stats.Rejected = append(imp.stats.Rejected, Rejection{Source: source, Errors: errs})
}

// Row builds the storage row for a validated workout. The definition is
// re-encoded as normalized JSON so YAML sources and legacy repeat shapes are
// stored in one canonical form.
func Row(w *models.Workout, userID int, source string) (models.WorkoutRow, error) {
	def, err := json.Marshal(w)
	if err != nil {
		return models.WorkoutRow{}, fmt.Errorf("encoding workout %q: %w", w.Name, err)
	}
	return models.WorkoutRow{
		UserID:     userID,
		Name:       w.Name,
		Patterns:   len(w.Patterns),
		Definition: def,
		Source:     source,
	}, nil
}

func nameFromSource(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
