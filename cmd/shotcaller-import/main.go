package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/meltforce/shotcaller/internal/config"
	"github.com/meltforce/shotcaller/internal/importer"
	"github.com/meltforce/shotcaller/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dir := flag.String("path", "", "directory of workout documents (required)")
	userID := flag.Int("user", 1, "user ID that owns the imported workouts")
	dryRun := flag.Bool("dry-run", false, "validate and report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: shotcaller-import -config config.yaml -path /path/to/workouts [-user N] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify workout directory exists
	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		log.Error("workout path does not exist or is not a directory", "path", *dir)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Run import
	start := time.Now()
	imp := importer.New(db, log, *dryRun).ForUser(*userID)
	stats, err := imp.Import(ctx, *dir)
	imp.Record(ctx, "cli", err, time.Since(start))
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_seen", stats.FilesSeen,
		"files_errored", stats.FilesErrored,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_skipped", stats.WorkoutsSkipped,
		"workouts_invalid", stats.WorkoutsInvalid,
	)
	for _, r := range stats.Rejected {
		for _, e := range r.Errors {
			log.Info("rejected workout", "source", r.Source, "problem", e.Error())
		}
	}
}
