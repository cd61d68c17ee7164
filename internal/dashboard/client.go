// Package dashboard implements the terminal dashboard client: it
// pulls the cached snapshot from a timeboard server, runs the
// aggregations locally and renders the result.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fyrsmithlabs/timeboard/internal/model"
	"github.com/fyrsmithlabs/timeboard/internal/server"
)

// ErrRefreshBusy indicates the server rejected a refresh because one
// is already running.
var ErrRefreshBusy = errors.New("server refresh already in progress")

// Client talks to the timeboard server API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given server base URL. Refreshes
// can take minutes for long backfills, so the client deliberately
// carries no timeout; the caller awaits the result.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Data fetches the cached snapshot. A server without a cache returns
// cached=false and a nil snapshot; that is not an error.
func (c *Client) Data(ctx context.Context) (*model.Snapshot, bool, error) {
	var out server.DataResponse
	if err := c.get(ctx, "/api/data", &out); err != nil {
		return nil, false, err
	}
	return out.Data, out.Cached, nil
}

// Refresh asks the server to run a full fetch-and-cache cycle and
// returns the fresh snapshot.
func (c *Client) Refresh(ctx context.Context) (*model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/refresh", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out server.RefreshResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return out.Data, nil
	case http.StatusConflict:
		return nil, ErrRefreshBusy
	default:
		var out server.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Error == "" {
			return nil, fmt.Errorf("refresh failed: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("refresh failed: %s", out.Error)
	}
}

// Status reports whether a refresh is running on the server.
func (c *Client) Status(ctx context.Context) (bool, error) {
	var out server.StatusResponse
	if err := c.get(ctx, "/api/refresh/status", &out); err != nil {
		return false, err
	}
	return out.InProgress, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
