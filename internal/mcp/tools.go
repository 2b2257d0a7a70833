package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/shotcaller/internal/importer"
	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/storage"
	"github.com/meltforce/shotcaller/internal/timeline"
	"github.com/meltforce/shotcaller/internal/validate"
)

// optionalSeed reads the seed argument. Absent means an unseeded run.
func optionalSeed(req mcp.CallToolRequest) (*int64, error) {
	v, ok := req.GetArguments()["seed"]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return nil, fmt.Errorf("seed must be an integer, got %v", v)
	}
	seed := int64(f)
	return &seed, nil
}

func requireID(req mcp.CallToolRequest, key string) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString(key)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(key + " parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("invalid " + key + ": " + err.Error())
	}
	return id, nil
}

// parseDocument validates the workout argument and renders the problems as a
// tool error when it is rejected.
func parseDocument(req mcp.CallToolRequest) (*models.Workout, *mcp.CallToolResult) {
	doc, err := req.RequireString("workout")
	if err != nil {
		return nil, mcp.NewToolResultError("workout parameter is required")
	}
	w, res := validate.Parse([]byte(doc))
	if !res.IsValid {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Error()
		}
		return nil, mcp.NewToolResultError("invalid workout:\n" + strings.Join(msgs, "\n"))
	}
	return w, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) generate(w *models.Workout, seed *int64) (*models.Timeline, *mcp.CallToolResult) {
	opts := h.gen
	opts.Seed = seed
	tl, err := timeline.Generate(w, opts)
	if err != nil {
		if !errors.Is(err, timeline.ErrIterationLimit) {
			h.log.Error("mcp generate", "workout", w.Name, "error", err)
		}
		return nil, mcp.NewToolResultError("generation failed: " + err.Error())
	}
	return tl, nil
}

// --- Tool definitions ---

const documentParam = "Workout document as JSON or YAML text. See the shotcaller://document_format resource."

var toolValidateWorkout = mcp.NewTool("validate_workout",
	mcp.WithDescription("Check a workout document and list every problem with its path (e.g. patterns[0].entries[2].config.interval). Returns {isValid, errors}."),
	mcp.WithString("workout", mcp.Required(), mcp.Description(documentParam)),
)

var toolGenerateTimeline = mcp.NewTool("generate_timeline",
	mcp.WithDescription("Generate a timeline from a workout document without storing anything. Returns the events (start, announced and end times, split-step times, repeat and superset numbers) and summary stats."),
	mcp.WithString("workout", mcp.Required(), mcp.Description(documentParam)),
	mcp.WithNumber("seed", mcp.Description("Integer seed. The same document and seed always yield the same timeline. Omit for a random run.")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List stored workouts with their IDs, names and pattern counts."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Fetch a stored workout including its full definition."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (UUID)")),
)

var toolSaveWorkout = mcp.NewTool("save_workout",
	mcp.WithDescription("Validate and store a workout document. Names are unique per user; saving an existing name is reported and leaves the stored workout unchanged."),
	mcp.WithString("workout", mcp.Required(), mcp.Description(documentParam)),
)

var toolGenerateStoredTimeline = mcp.NewTool("generate_stored_timeline",
	mcp.WithDescription("Generate a timeline from a stored workout and, by default, keep it in the workout's history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (UUID)")),
	mcp.WithNumber("seed", mcp.Description("Integer seed for a reproducible timeline")),
	mcp.WithBoolean("save", mcp.Description("Store the generated timeline. Defaults to true.")),
)

var toolGetTimeline = mcp.NewTool("get_timeline",
	mcp.WithDescription("Fetch a stored timeline with all events."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Timeline ID (UUID)")),
)

var toolListTimelines = mcp.NewTool("list_timelines",
	mcp.WithDescription("List stored timelines of a workout, newest first, with seed and stats but without events."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout ID (UUID)")),
	mcp.WithNumber("limit", mcp.Description("Maximum timelines to return. Defaults to 20.")),
)

var toolGetStats = mcp.NewTool("get_stats",
	mcp.WithDescription("Usage overview: stored workouts and timelines, total shots and seconds generated, and the most used workouts."),
)

// --- Tool handlers ---

func (h *handlers) validateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("workout")
	if err != nil {
		return mcp.NewToolResultError("workout parameter is required"), nil
	}
	return jsonResult(validate.Validate([]byte(doc)))
}

func (h *handlers) generateTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seed, err := optionalSeed(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	w, bad := parseDocument(req)
	if bad != nil {
		return bad, nil
	}
	tl, bad := h.generate(w, seed)
	if bad != nil {
		return bad, nil
	}
	return jsonResult(tl)
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := h.ds.ListWorkouts(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if rows == nil {
		rows = []models.WorkoutRow{}
	}
	return jsonResult(rows)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requireID(req, "id")
	if bad != nil {
		return bad, nil
	}
	row, err := h.ds.GetWorkout(ctx, id, UserIDFromContext(ctx))
	if err != nil {
		return h.queryError("get_workout", err), nil
	}
	return jsonResult(row)
}

func (h *handlers) saveWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, bad := parseDocument(req)
	if bad != nil {
		return bad, nil
	}
	row, err := importer.Row(w, UserIDFromContext(ctx), "mcp")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row.ID = uuid.New()

	inserted, err := h.ds.InsertWorkout(ctx, row)
	if err != nil {
		h.log.Error("mcp save_workout", "error", err)
		return mcp.NewToolResultError("insert failed: " + err.Error()), nil
	}
	if !inserted {
		return mcp.NewToolResultError(fmt.Sprintf("a workout named %q already exists", row.Name)), nil
	}
	return jsonResult(map[string]any{"name": row.Name, "patterns": row.Patterns, "saved": true})
}

func (h *handlers) generateStoredTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requireID(req, "id")
	if bad != nil {
		return bad, nil
	}
	seed, err := optionalSeed(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	uid := UserIDFromContext(ctx)

	row, err := h.ds.GetWorkout(ctx, id, uid)
	if err != nil {
		return h.queryError("generate_stored_timeline", err), nil
	}
	w, err := row.Decode()
	if err != nil {
		return mcp.NewToolResultError("stored workout is unreadable: " + err.Error()), nil
	}
	tl, bad := h.generate(w, seed)
	if bad != nil {
		return bad, nil
	}
	if !req.GetBool("save", true) {
		return jsonResult(tl)
	}

	stored := &models.TimelineRow{
		ID:        uuid.New(),
		WorkoutID: id,
		UserID:    uid,
		Seed:      tl.Seed,
		Stats:     tl.Stats,
		Events:    tl.Events,
	}
	if err := h.ds.InsertTimeline(ctx, stored); err != nil {
		h.log.Error("mcp generate_stored_timeline: save", "error", err)
		return mcp.NewToolResultError("saving timeline failed: " + err.Error()), nil
	}
	return jsonResult(stored)
}

func (h *handlers) getTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requireID(req, "id")
	if bad != nil {
		return bad, nil
	}
	row, err := h.ds.GetTimeline(ctx, id, UserIDFromContext(ctx))
	if err != nil {
		return h.queryError("get_timeline", err), nil
	}
	return jsonResult(row)
}

func (h *handlers) listTimelines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requireID(req, "workout_id")
	if bad != nil {
		return bad, nil
	}
	limit := req.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.ds.ListTimelines(ctx, id, UserIDFromContext(ctx), limit)
	if err != nil {
		return h.queryError("list_timelines", err), nil
	}
	if rows == nil {
		rows = []models.TimelineRow{}
	}
	return jsonResult(rows)
}

func (h *handlers) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		return h.queryError("get_stats", err), nil
	}
	return jsonResult(stats)
}

func (h *handlers) queryError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError(err.Error())
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}
