package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/storage"
)

// HTTPClient implements DataSource by calling the Shotcaller REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// may be empty when the server authenticates over the tailnet.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends a request and returns the body and status. Non-2xx statuses
// other than those listed in accept become errors; 404 wraps
// storage.ErrNotFound.
func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body []byte, accept ...int) ([]byte, int, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, resp.StatusCode, nil
	}
	for _, code := range accept {
		if resp.StatusCode == code {
			return data, resp.StatusCode, nil
		}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, resp.StatusCode, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	}
	return nil, resp.StatusCode, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	body, _, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, _ int) ([]models.WorkoutRow, error) {
	var rows []models.WorkoutRow
	if err := c.get(ctx, "/api/v1/workouts", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, workoutID uuid.UUID, _ int) (*models.WorkoutRow, error) {
	var row models.WorkoutRow
	if err := c.get(ctx, "/api/v1/workouts/"+workoutID.String(), nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// InsertWorkout posts the definition. The server assigns the stored ID, so
// row.ID is not sent. A 409 reports an existing name as not inserted.
func (c *HTTPClient) InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error) {
	_, status, err := c.do(ctx, http.MethodPost, "/api/v1/workouts", nil, row.Definition, http.StatusConflict)
	if err != nil {
		return false, err
	}
	return status != http.StatusConflict, nil
}

// InsertTimeline saves the timeline remotely and copies back the server's
// ID and creation time.
func (c *HTTPClient) InsertTimeline(ctx context.Context, row *models.TimelineRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("httpclient: encode timeline: %w", err)
	}
	body, _, err := c.do(ctx, http.MethodPost, "/api/v1/timelines", nil, data)
	if err != nil {
		return err
	}
	var saved models.TimelineRow
	if err := json.Unmarshal(body, &saved); err != nil {
		return fmt.Errorf("httpclient: decode timeline: %w", err)
	}
	row.ID = saved.ID
	row.UserID = saved.UserID
	row.CreatedAt = saved.CreatedAt
	return nil
}

func (c *HTTPClient) GetTimeline(ctx context.Context, timelineID uuid.UUID, _ int) (*models.TimelineRow, error) {
	var row models.TimelineRow
	if err := c.get(ctx, "/api/v1/timelines/"+timelineID.String(), nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (c *HTTPClient) ListTimelines(ctx context.Context, workoutID uuid.UUID, _, limit int) ([]models.TimelineRow, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var rows []models.TimelineRow
	if err := c.get(ctx, "/api/v1/workouts/"+workoutID.String()+"/timelines", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	var stats storage.DataStats
	if err := c.get(ctx, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
