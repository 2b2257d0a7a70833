package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/shotcaller/internal/timeline"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered. gen
// carries the generator bounds; its Seed is ignored in favor of the
// per-call seed argument.
func New(ds DataSource, gen timeline.Options, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Shotcaller", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Shotcaller turns workout documents (patterns of shots and spoken messages) into timed timelines. Validate documents before generating, pass a seed for reproducible timelines, and store workouts to generate from them later. All data is scoped to the authenticated user."),
	)

	gen.Seed = nil
	gen.Logger = log
	h := &handlers{ds: ds, gen: gen, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolValidateWorkout, Handler: h.validateWorkout},
		server.ServerTool{Tool: toolGenerateTimeline, Handler: h.generateTimeline},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolSaveWorkout, Handler: h.saveWorkout},
		server.ServerTool{Tool: toolGenerateStoredTimeline, Handler: h.generateStoredTimeline},
		server.ServerTool{Tool: toolGetTimeline, Handler: h.getTimeline},
		server.ServerTool{Tool: toolListTimelines, Handler: h.listTimelines},
		server.ServerTool{Tool: toolGetStats, Handler: h.getStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resWorkouts, Handler: h.workouts},
		server.ServerResource{Resource: resStats, Handler: h.stats},
		server.ServerResource{Resource: resDocumentFormat, Handler: h.documentFormat},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	gen timeline.Options
	log *slog.Logger
}

// --- Resource definitions ---

var resWorkouts = mcp.NewResource(
	"shotcaller://workouts",
	"Stored Workouts",
	mcp.WithResourceDescription("All stored workouts with their pattern counts, without definitions"),
	mcp.WithMIMEType("application/json"),
)

var resStats = mcp.NewResource(
	"shotcaller://stats",
	"Usage Stats",
	mcp.WithResourceDescription("Counts of stored workouts and timelines, total shots and seconds generated, and per-workout usage"),
	mcp.WithMIMEType("application/json"),
)

var resDocumentFormat = mcp.NewResource(
	"shotcaller://document_format",
	"Workout Document Format",
	mcp.WithResourceDescription("Reference for the workout document accepted by validate_workout and generate_timeline"),
	mcp.WithMIMEType("text/markdown"),
)
