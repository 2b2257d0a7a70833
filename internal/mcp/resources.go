package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) workouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rows, err := h.ds.ListWorkouts(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, rows)
}

func (h *handlers) stats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Warn("stats resource failed", "error", err)
		return nil, err
	}
	return jsonContents(req.Params.URI, stats)
}

func (h *handlers) documentFormat(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     documentFormat,
		},
	}, nil
}

const documentFormat = `# Workout document

A workout has a name, an optional config and one or more patterns. A pattern
has an id, an optional positionType and config, and a list of entries. Each
entry is either a shot or a message:

    name: Court sprints
    config:
      interval: 5
      limits: {type: time-limit, value: 300}
    patterns:
      - id: front
        config: {iterationType: shuffle, repeatCount: {type: random, min: 1, max: 2}}
        entries:
          - {type: shot, id: fl, name: Front left}
          - {type: shot, id: fr, name: Front right, positionType: linked}
          - {type: message, id: rest, name: Rest, config: {message: Rest now, skipAtEndOfWorkout: true}}

## Config fields

Config layers as workout, then pattern, then entry; the most specific value wins.

- interval (seconds, default 5)
- intervalOffset {min, max} with intervalOffsetType: fixed | random
- shotAnnouncementLeadTime (seconds, default 2.5)
- splitStepSpeed: none | slow | medium | fast | random | auto-scale
- speechRate (multiplier on 150 words per minute)
- repeatCount: a number, {type: fixed, count} or {type: random, min, max}
- iterationType: in-order | shuffle (workout and pattern only)
- limits {type: all-shots | shot-limit | time-limit, value}
- message, intervalType: fixed | additional, countdown, skipAtEndOfWorkout
  (message entries only)

## positionType

normal (default), linked (stays right after the previous item), last, or a
1-based slot number.
`
