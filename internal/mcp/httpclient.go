package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/analytics"
	"github.com/meltforce/liftlog/internal/models"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the server (reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, analytics.ErrUnknownExercise)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
	return body, nil
}

// getJSON fetches path and decodes the body into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func exercisePath(id, suffix string) string {
	return "/api/v1/exercises/" + url.PathEscape(id) + suffix
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]models.Exercise, error) {
	var out []models.Exercise
	err := c.getJSON(ctx, "/api/v1/exercises", nil, &out)
	return out, err
}

func (c *HTTPClient) GeneralStats(ctx context.Context) (analytics.GeneralStats, error) {
	var out analytics.GeneralStats
	err := c.getJSON(ctx, "/api/v1/stats", nil, &out)
	return out, err
}

func (c *HTTPClient) ExerciseProgress(ctx context.Context) ([]analytics.ExerciseProgress, error) {
	var out []analytics.ExerciseProgress
	err := c.getJSON(ctx, "/api/v1/progress", nil, &out)
	return out, err
}

func (c *HTTPClient) Progression(ctx context.Context, exerciseID string) (analytics.ProgressionResult, error) {
	var out analytics.ProgressionResult
	err := c.getJSON(ctx, exercisePath(exerciseID, "/progression"), nil, &out)
	return out, err
}

func (c *HTTPClient) Progressions(ctx context.Context) ([]analytics.ProgressionResult, error) {
	var out []analytics.ProgressionResult
	err := c.getJSON(ctx, "/api/v1/progressions", nil, &out)
	return out, err
}

func (c *HTTPClient) ExerciseStats(ctx context.Context, exerciseID string) (analytics.ExerciseStats, error) {
	var out analytics.ExerciseStats
	err := c.getJSON(ctx, exercisePath(exerciseID, "/stats"), nil, &out)
	return out, err
}

func (c *HTTPClient) ChartSeries(ctx context.Context, exerciseID string, metric analytics.Metric, window analytics.Window) (analytics.Series, error) {
	if err := metric.Validate(); err != nil {
		return analytics.Series{}, err
	}
	if err := window.Validate(); err != nil {
		return analytics.Series{}, err
	}
	params := url.Values{}
	params.Set("metric", string(metric))
	params.Set("window", string(window))

	var out analytics.Series
	err := c.getJSON(ctx, exercisePath(exerciseID, "/chart"), params, &out)
	return out, err
}

func (c *HTTPClient) RecentWorkouts(ctx context.Context, limit int) ([]analytics.RecentWorkout, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var out []analytics.RecentWorkout
	err := c.getJSON(ctx, "/api/v1/workouts/recent", params, &out)
	return out, err
}
