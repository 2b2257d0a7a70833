package main

import (
	"fmt"

	"github.com/meltforce/shotcaller/internal/validate"
	"github.com/spf13/cobra"
)

type validateReport struct {
	Source string `json:"source"`
	validate.Result
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|->...",
		Short: "Check workout documents and list every problem",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]validateReport, 0, len(args))
			invalid := 0
			for _, path := range args {
				doc, err := readDocument(cmd, path)
				if err != nil {
					return err
				}
				var res validate.Result
				if ctx.remote() {
					r, err := ctx.client().Validate(cmd.Context(), doc)
					if err != nil {
						return fmt.Errorf("validating %s: %w", path, err)
					}
					res = *r
				} else {
					res = validate.Validate(doc)
				}
				if !res.IsValid {
					invalid++
				}
				reports = append(reports, validateReport{Source: path, Result: res})
			}

			if ctx.wantsJSON(cmd) {
				if err := writeJSON(cmd, reports); err != nil {
					return err
				}
			} else {
				printReports(cmd, reports)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d document(s) invalid", invalid, len(reports))
			}
			return nil
		},
	}
}

func printReports(cmd *cobra.Command, reports []validateReport) {
	var rows [][]string
	for _, r := range reports {
		if r.IsValid {
			rows = append(rows, []string{r.Source, "", "ok"})
			continue
		}
		for _, e := range r.Errors {
			rows = append(rows, []string{r.Source, e.Path, e.Message})
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Document", "Path", "Result"}, rows, nil))
}
