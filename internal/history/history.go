package history

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/meltforce/shotcaller/internal/models"
	_ "modernc.org/sqlite"
)

// Store keeps a local log of generated timelines. Seeded runs are cached by
// document hash and seed so repeating them skips generation.
type Store struct {
	db *sql.DB
}

// Entry is one recorded generation.
type Entry struct {
	ID        int64     `json:"id"`
	Hash      string    `json:"hash"`
	Seed      *int64    `json:"seed,omitempty"`
	Workout   string    `json:"workout"`
	Source    string    `json:"source"`
	Shots     int       `json:"shots"`
	Events    int       `json:"events"`
	Duration  float64   `json:"duration"`
	Truncated bool      `json:"truncated,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Open opens (or creates) the SQLite history database at dir/history.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_hash   TEXT NOT NULL,
		seed       INTEGER,
		workout    TEXT NOT NULL,
		source     TEXT NOT NULL,
		shots      INTEGER NOT NULL,
		events     INTEGER NOT NULL,
		duration   REAL NOT NULL,
		truncated  INTEGER NOT NULL DEFAULT 0,
		timeline   TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (doc_hash, seed)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &Store{db: db}, nil
}

// Cached returns the timeline previously generated for this document hash
// and seed.
func (s *Store) Cached(hash string, seed int64) (*models.Timeline, bool, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT timeline FROM generations WHERE doc_hash = ? AND seed = ?`,
		hash, seed,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying history: %w", err)
	}

	var tl models.Timeline
	if err := json.Unmarshal([]byte(raw), &tl); err != nil {
		return nil, false, fmt.Errorf("decoding cached timeline: %w", err)
	}
	return &tl, true, nil
}

// Record stores a generated timeline. A seeded run replaces any earlier run
// of the same document and seed.
func (s *Store) Record(hash, workout, source string, tl *models.Timeline) error {
	data, err := json.Marshal(tl)
	if err != nil {
		return fmt.Errorf("encoding timeline: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO generations
			(doc_hash, seed, workout, source, shots, events, duration, truncated, timeline, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hash, tl.Seed, workout, source,
		tl.Stats.TotalShots, tl.Stats.TotalEvents, tl.Stats.TotalDuration, tl.Stats.Truncated,
		string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording generation: %w", err)
	}
	return nil
}

// Recent returns the latest generations, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, doc_hash, seed, workout, source, shots, events, duration, truncated, created_at
		FROM generations ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var seed sql.NullInt64
		var created int64
		if err := rows.Scan(&e.ID, &e.Hash, &seed, &e.Workout, &e.Source, &e.Shots, &e.Events, &e.Duration, &e.Truncated, &created); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if seed.Valid {
			e.Seed = &seed.Int64
		}
		e.CreatedAt = time.Unix(created, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the history database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes the SHA-256 hash of a document read from stdin or
// another non-file source.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
