package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/meltforce/shotcaller/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently generated timelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled (--history-dir is empty)")
			}
			defer store.Close()

			entries, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []history.Entry{}
			}
			if ctx.wantsJSON(cmd) {
				return writeJSON(cmd, entries)
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				seed := ""
				if e.Seed != nil {
					seed = strconv.FormatInt(*e.Seed, 10)
				}
				rows[i] = []string{
					e.CreatedAt.Format("2006-01-02 15:04"),
					e.Workout,
					seed,
					strconv.Itoa(e.Shots),
					strconv.Itoa(e.Events),
					seconds(e.Duration),
					e.Source,
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"When", "Workout", "Seed", "Shots", "Events", "Seconds", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}
