package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/meltforce/shotcaller/internal/client"
	"github.com/meltforce/shotcaller/internal/history"
	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/timeline"
	"github.com/meltforce/shotcaller/internal/validate"
	"github.com/spf13/cobra"
)

// errInvalid is returned after validation problems have been printed.
var errInvalid = errors.New("workout is invalid")

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var seedFlag int64
	var maxEvents int
	var noCache bool

	cmd := &cobra.Command{
		Use:   "generate <file|->",
		Short: "Generate a timeline from a workout document",
		Long: "Generate a timeline from a JSON or YAML workout document. Pass --seed for a\n" +
			"reproducible timeline; seeded runs are cached in the local history.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			var seed *int64
			if cmd.Flags().Changed("seed") {
				seed = &seedFlag
			}
			log := ctx.logger(cmd)

			store, err := ctx.openHistory()
			if err != nil {
				log.Warn("history unavailable", "error", err)
			}
			if store != nil {
				defer store.Close()
			}
			hash := history.HashBytes(doc)
			cacheable := store != nil && seed != nil && !noCache && !cmd.Flags().Changed("max-events")

			var tl *models.Timeline
			if cacheable {
				cached, ok, err := store.Cached(hash, *seed)
				if err != nil {
					log.Warn("history lookup failed", "error", err)
				}
				if ok {
					log.Debug("using cached timeline", "hash", hash[:12], "seed", *seed)
					tl = cached
				}
			}

			name := filepath.Base(args[0])
			if w, err := models.DecodeWorkout(doc); err == nil && w.Name != "" {
				name = w.Name
			}

			if tl == nil {
				if ctx.remote() {
					tl, err = ctx.client().Generate(cmd.Context(), doc, seed)
					var serr *client.StatusError
					if errors.As(err, &serr) && len(serr.Errors) > 0 {
						printProblems(cmd, args[0], serr.Errors)
						return errInvalid
					}
				} else {
					tl, err = generateLocal(cmd, doc, seed, maxEvents, log)
				}
				if err != nil {
					return err
				}
				if store != nil {
					if err := store.Record(hash, name, args[0], tl); err != nil {
						log.Warn("recording history failed", "error", err)
					}
				}
			}

			if tl.Stats.Truncated {
				log.Warn("timeline truncated: generation stopped making progress", "events", len(tl.Events))
			}
			if ctx.wantsJSON(cmd) {
				return writeJSON(cmd, tl)
			}
			printTimeline(cmd, name, tl)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "Seed for reproducible random choices")
	cmd.Flags().IntVar(&maxEvents, "max-events", timeline.DefaultMaxEvents, "Iteration bound before generation fails")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Regenerate even when a cached seeded timeline exists")
	return cmd
}

func generateLocal(cmd *cobra.Command, doc []byte, seed *int64, maxEvents int, log *slog.Logger) (*models.Timeline, error) {
	w, res := validate.Parse(doc)
	if !res.IsValid {
		printProblems(cmd, "", res.Errors)
		return nil, errInvalid
	}
	return timeline.Generate(w, timeline.Options{Seed: seed, MaxEvents: maxEvents, Logger: log})
}

func printProblems(cmd *cobra.Command, source string, errs []validate.Error) {
	rows := make([][]string, len(errs))
	for i, e := range errs {
		path := e.Path
		if path == "" {
			path = "(document)"
		}
		rows[i] = []string{path, e.Message}
	}
	if source != "" && source != "-" {
		fmt.Fprintln(cmd.ErrOrStderr(), source)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), renderTable([]string{"Path", "Problem"}, rows, nil))
}

func printTimeline(cmd *cobra.Command, name string, tl *models.Timeline) {
	rows := make([][]string, len(tl.Events))
	for i, ev := range tl.Events {
		label := ev.Name
		if ev.Type == "message" && ev.Message != "" {
			label = fmt.Sprintf("%q", ev.Message)
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			seconds(ev.StartTime),
			seconds(ev.EndTime),
			ev.Type,
			label,
			ev.PatternName,
			strconv.Itoa(ev.SupersetNumber),
			ratio(ev.PatternRepeatNumber, ev.TotalPatternRepeats),
			ratio(ev.ShotRepeatNumber, ev.TotalShotRepeats),
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "End", "Type", "Name", "Pattern", "Set", "Run", "Rep"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight},
	))

	s := tl.Stats
	fmt.Fprintf(out, "%s: %d shots, %d messages, %d supersets, %ss", name, s.TotalShots, s.TotalMessages, s.Supersets, seconds(s.TotalDuration))
	if tl.Seed != nil {
		fmt.Fprintf(out, " (seed %d)", *tl.Seed)
	}
	fmt.Fprintln(out)
}
