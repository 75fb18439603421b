package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/ingest"
)

// ErrRejected is returned when the server refuses a file outright; retrying
// the same bytes will not help.
var ErrRejected = errors.New("rejected by server")

// Client sends training-log exports to a LiftLog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a client for the server at serverURL. apiKey may be
// empty when the server runs without write authentication.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// Server is the base URL the client talks to.
func (c *Client) Server() string { return c.serverURL }

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reaching %s: %w", c.serverURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed (status %d)", resp.StatusCode)
	}
	return nil
}

type ingestResponse struct {
	Data    *ingest.Result `json:"data"`
	Warning string         `json:"warning,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// PushAlpha POSTs an Alpha Progression CSV export to the ingest endpoint.
// Network failures and 5xx responses are retried up to 3 times with
// exponential backoff; 4xx responses fail immediately with ErrRejected.
func (c *Client) PushAlpha(ctx context.Context, data []byte) (*ingest.Result, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}

		res, err := c.pushOnce(ctx, data)
		if err == nil || errors.Is(err, ErrRejected) {
			return res, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) pushOnce(ctx context.Context, data []byte) (*ingest.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/ingest/alpha", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/csv")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var out ingestResponse
	_ = json.Unmarshal(body, &out)

	switch {
	case resp.StatusCode == http.StatusOK && out.Data != nil:
		if out.Data.Warning == "" {
			out.Data.Warning = out.Warning
		}
		return out.Data, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, msg)
	default:
		return nil, fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
