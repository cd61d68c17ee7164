// Package upstream implements the REST client for the third-party
// project-management API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/timeboard/internal/config"
	"github.com/fyrsmithlabs/timeboard/internal/model"
)

var (
	// ErrUpstream indicates a transport failure or non-2xx response
	// from the upstream API.
	ErrUpstream = errors.New("upstream request failed")

	// ErrInvalidConfig indicates invalid client configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds configuration for the upstream client.
type Config struct {
	// BaseURL is the base URL for the upstream API.
	BaseURL string

	// Token is the bearer token used on every request.
	Token config.Secret
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if !c.Token.IsSet() {
		return fmt.Errorf("%w: bearer token required", ErrInvalidConfig)
	}
	return nil
}

// WorkItem is one row of the upstream work-item listing. Tasks,
// milestones and groups all arrive through this shape; anything with
// another type is dropped by the fetcher.
type WorkItem struct {
	ID              int64            `json:"id"`
	Type            string           `json:"type"`
	Name            string           `json:"name"`
	StartDate       string           `json:"start_date"`
	EndDate         string           `json:"end_date"`
	PercentComplete float64          `json:"percent_complete"`
	GroupID         int64            `json:"group_id"`
	Resources       []model.Resource `json:"resources"`
}

// Client talks to the upstream API.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates an upstream client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &Client{
		config: cfg,
		client: &http.Client{},
	}, nil
}

// Project fetches project metadata, which carries the start/end dates
// bounding the time-entry backfill.
func (c *Client) Project(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	path := fmt.Sprintf("/api/v1/projects/%d", id)
	if err := c.get(ctx, path, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// WorkItems fetches every work item of the project in one listing.
func (c *Client) WorkItems(ctx context.Context, projectID int64) ([]WorkItem, error) {
	q := url.Values{}
	q.Set("project_id", strconv.FormatInt(projectID, 10))

	var items []WorkItem
	if err := c.get(ctx, "/api/v1/work-items", q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// TimeEntries fetches the time entries logged on one calendar date by
// any of the given users. The upstream API has no range query, so the
// fetcher calls this once per day of the backfill window.
func (c *Client) TimeEntries(ctx context.Context, date string, userIDs []int64) ([]model.TimeEntry, error) {
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	q := url.Values{}
	q.Set("date", date)
	q.Set("user_ids", strings.Join(ids, ","))

	var entries []model.TimeEntry
	if err := c.get(ctx, "/api/v1/time-entries", q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// get performs an authenticated GET and decodes the JSON response.
// Any non-2xx status is an ErrUpstream carrying the response body.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token.Value())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s: status %d: %s", ErrUpstream, path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
