package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/shotcaller/internal/models"
	"github.com/spf13/cobra"
)

func newPushCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "push <file|dir>...",
		Short: "Upload workout documents to the server",
		Long: "Upload JSON and YAML workout documents to the server in one batch.\n" +
			"Directories are walked recursively. Workouts whose name already exists\n" +
			"on the server are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ctx.remote() {
				return errors.New("push needs --server; use shotcaller-import to load a local database")
			}
			log := ctx.logger(cmd)

			files, err := collectWorkoutFiles(args)
			if err != nil {
				return err
			}
			var docs []json.RawMessage
			for _, path := range files {
				doc, err := encodeForUpload(path)
				if err != nil {
					log.Warn("skipping unreadable document", "path", path, "error", err)
					continue
				}
				docs = append(docs, doc)
			}
			if len(docs) == 0 {
				return errors.New("no workout documents found")
			}

			res, err := ctx.client().Import(cmd.Context(), docs, dryRun)
			if err != nil {
				return err
			}
			if ctx.wantsJSON(cmd) {
				return writeJSON(cmd, res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sent %d document(s): %d inserted, %d skipped (existing), %d invalid\n",
				len(docs), res.WorkoutsInserted, res.WorkoutsSkipped, res.WorkoutsInvalid)
			for _, r := range res.Rejected {
				for _, e := range r.Errors {
					fmt.Fprintf(out, "  %s: %s\n", r.Source, e.Error())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate on the server without storing")
	return cmd
}

func isWorkoutFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// collectWorkoutFiles expands directories into their workout documents.
// Explicit file arguments are kept whatever their extension.
func collectWorkoutFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && path != arg && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !d.IsDir() && isWorkoutFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return files, nil
}

// encodeForUpload converts a JSON or YAML document to JSON, naming it after
// its file when the name is missing.
func encodeForUpload(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w, err := models.DecodeWorkout(data)
	if err != nil {
		return nil, err
	}
	if w.Name == "" {
		w.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return json.Marshal(w)
}
