package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/validate"
)

// ErrConflict is returned when the server already has a workout by that name.
var ErrConflict = errors.New("workout already exists")

// ImportResult mirrors the importer stats returned by the server without
// importing the importer package (which would pull in pgx and other
// server-side dependencies).
type ImportResult struct {
	FilesSeen        int `json:"files_seen"`
	WorkoutsInserted int `json:"workouts_inserted"`
	WorkoutsSkipped  int `json:"workouts_skipped"`
	WorkoutsInvalid  int `json:"workouts_invalid"`
	Rejected         []struct {
		Source string           `json:"source"`
		Errors []validate.Error `json:"errors"`
	} `json:"rejected,omitempty"`
}

// StatusError carries a non-2xx response.
type StatusError struct {
	Status int
	Body   string
	// Errors holds validation problems when the server rejected a document.
	Errors []validate.Error
}

func (e *StatusError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("server rejected workout (status %d): %d problem(s)", e.Status, len(e.Errors))
	}
	return fmt.Sprintf("request failed (status %d): %s", e.Status, strings.TrimSpace(e.Body))
}

// Client talks to a Shotcaller server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the Shotcaller server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		attempts: 3,
		backoff:  time.Second,
	}
}

// send issues a request, retrying up to 3 times with exponential backoff on
// transport errors and 5xx responses. 4xx responses are returned at once.
func (c *Client) send(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	u := c.serverURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := range c.attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil || resp.StatusCode == http.StatusNoContent {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decoding %s response: %w", path, err)
			}
			return nil
		}

		serr := &StatusError{Status: resp.StatusCode, Body: string(data)}
		if resp.StatusCode == http.StatusUnprocessableEntity {
			var invalid struct {
				Errors []validate.Error `json:"errors"`
			}
			if json.Unmarshal(data, &invalid) == nil {
				serr.Errors = invalid.Errors
			}
		}
		if resp.StatusCode < 500 {
			return serr
		}
		lastErr = serr
	}

	return fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}

func seedParams(seed *int64) url.Values {
	if seed == nil {
		return nil
	}
	v := url.Values{}
	v.Set("seed", strconv.FormatInt(*seed, 10))
	return v
}

// Validate checks a workout document on the server.
func (c *Client) Validate(ctx context.Context, doc []byte) (*validate.Result, error) {
	var res validate.Result
	if err := c.send(ctx, http.MethodPost, "/api/v1/validate", nil, doc, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Generate builds a timeline from a document without storing it.
func (c *Client) Generate(ctx context.Context, doc []byte, seed *int64) (*models.Timeline, error) {
	var tl models.Timeline
	if err := c.send(ctx, http.MethodPost, "/api/v1/timeline", seedParams(seed), doc, &tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

// CreateWorkout stores a document. A name clash returns ErrConflict.
func (c *Client) CreateWorkout(ctx context.Context, doc []byte) (*models.WorkoutRow, error) {
	var row models.WorkoutRow
	err := c.send(ctx, http.MethodPost, "/api/v1/workouts", nil, doc, &row)
	var serr *StatusError
	if errors.As(err, &serr) && serr.Status == http.StatusConflict {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListWorkouts returns the stored workouts without definitions.
func (c *Client) ListWorkouts(ctx context.Context) ([]models.WorkoutRow, error) {
	var rows []models.WorkoutRow
	if err := c.send(ctx, http.MethodGet, "/api/v1/workouts", nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GenerateStored generates and stores a timeline for a stored workout.
func (c *Client) GenerateStored(ctx context.Context, workoutID uuid.UUID, seed *int64) (*models.TimelineRow, error) {
	var row models.TimelineRow
	path := "/api/v1/workouts/" + workoutID.String() + "/timelines"
	if err := c.send(ctx, http.MethodPost, path, seedParams(seed), nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetTimeline fetches a stored timeline with its events.
func (c *Client) GetTimeline(ctx context.Context, timelineID uuid.UUID) (*models.TimelineRow, error) {
	var row models.TimelineRow
	if err := c.send(ctx, http.MethodGet, "/api/v1/timelines/"+timelineID.String(), nil, nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Import sends documents in one batch. dryRun validates without writing.
func (c *Client) Import(ctx context.Context, docs []json.RawMessage, dryRun bool) (*ImportResult, error) {
	data, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshaling documents: %w", err)
	}
	var params url.Values
	if dryRun {
		params = url.Values{"dry_run": {"true"}}
	}
	var res ImportResult
	if err := c.send(ctx, http.MethodPost, "/api/v1/import", params, data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
