package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

func TestNewClient(t *testing.T) {
	t.Run("requires a base URL", func(t *testing.T) {
		_, err := NewClient(Config{Token: "tok"})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("requires a token", func(t *testing.T) {
		_, err := NewClient(Config{BaseURL: "http://localhost"})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestClient(t *testing.T) {
	newTestClient := func(t *testing.T, handler http.HandlerFunc) *Client {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		client, err := NewClient(Config{BaseURL: srv.URL, Token: "tok-123"})
		require.NoError(t, err)
		return client
	}

	t.Run("project request carries the bearer token", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			assert.Equal(t, "/api/v1/projects/42", r.URL.Path)
			_ = json.NewEncoder(w).Encode(model.Project{ID: 42, Name: "Apollo"})
		})

		project, err := client.Project(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, "Apollo", project.Name)
	})

	t.Run("work items filter by project id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/work-items", r.URL.Path)
			assert.Equal(t, "42", r.URL.Query().Get("project_id"))
			_ = json.NewEncoder(w).Encode([]WorkItem{{ID: 1, Type: model.TypeTask, Name: "Build API"}})
		})

		items, err := client.WorkItems(context.Background(), 42)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Build API", items[0].Name)
	})

	t.Run("time entries pass the date and the multi-user filter", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/time-entries", r.URL.Path)
			assert.Equal(t, "2024-06-01", r.URL.Query().Get("date"))
			assert.Equal(t, "5,7,9", r.URL.Query().Get("user_ids"))
			_ = json.NewEncoder(w).Encode([]model.TimeEntry{{ID: 900, UserID: 7}})
		})

		entries, err := client.TimeEntries(context.Background(), "2024-06-01", []int64{5, 7, 9})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(900), entries[0].ID)
	})

	t.Run("non-2xx is an upstream error with the body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "token expired", http.StatusUnauthorized)
		})

		_, err := client.Project(context.Background(), 42)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "token expired")
	})

	t.Run("transport failure is an upstream error", func(t *testing.T) {
		client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1", Token: "tok"})
		require.NoError(t, err)

		_, err = client.Project(context.Background(), 42)
		assert.ErrorIs(t, err, ErrUpstream)
	})
}
