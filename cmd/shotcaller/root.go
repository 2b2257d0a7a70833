package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meltforce/shotcaller/internal/client"
	"github.com/meltforce/shotcaller/internal/history"
	"github.com/spf13/cobra"
)

type commandContext struct {
	server     string
	apiKey     string
	historyDir string
	json       bool
	verbose    bool
}

func (c *commandContext) remote() bool { return c.server != "" }

func (c *commandContext) client() *client.Client {
	return client.NewClient(c.server, c.apiKey)
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openHistory opens the local history store. An empty directory disables it.
func (c *commandContext) openHistory() (*history.Store, error) {
	if c.historyDir == "" {
		return nil, nil
	}
	return history.Open(c.historyDir)
}

func defaultHistoryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".shotcaller")
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "shotcaller",
		Short:         "Generate timed workout timelines from workout documents",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.server, "server", os.Getenv("SHOTCALLER_SERVER"), "Shotcaller server URL; commands run locally when empty")
	flags.StringVar(&ctx.apiKey, "api-key", os.Getenv("SHOTCALLER_API_KEY"), "API key for the server")
	flags.StringVar(&ctx.historyDir, "history-dir", defaultHistoryDir(), "Directory of the local history database; empty disables history")
	flags.BoolVar(&ctx.json, "json", false, "Always print JSON")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newPushCommand(ctx))

	return rootCmd
}

// readDocument reads a workout document from a path, or stdin for "-".
func readDocument(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
