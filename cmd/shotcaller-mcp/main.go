package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/shotcaller/internal/config"
	"github.com/meltforce/shotcaller/internal/mcp"
	"github.com/meltforce/shotcaller/internal/storage"
	"github.com/meltforce/shotcaller/internal/timeline"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file for direct database access")
	serverURL := flag.String("server", os.Getenv("SHOTCALLER_SERVER"), "Shotcaller server URL for remote mode")
	apiKey := flag.String("api-key", os.Getenv("SHOTCALLER_API_KEY"), "API key for the server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("shotcaller-mcp", Version)
		return
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	var gen timeline.Options

	switch {
	case *serverURL != "":
		ds = mcp.NewHTTPClient(*serverURL, *apiKey)
		log.Info("remote mode", "server", *serverURL)
	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		gen = timeline.Options{MaxEvents: cfg.Generator.MaxEvents, MaxNoProgress: cfg.Generator.MaxNoProgress}
		log.Info("local mode", "database", cfg.Database.Name)
	default:
		fmt.Fprintf(os.Stderr, "Usage: shotcaller-mcp -server <URL> [-api-key KEY] | -config config.yaml\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := mcp.New(ds, gen, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server stopped", "error", err)
		os.Exit(1)
	}
}
