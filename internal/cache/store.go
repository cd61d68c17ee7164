// Package cache persists the latest snapshot as a single JSON
// document and coordinates refresh operations.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// Errors for cache operations.
var (
	// ErrCorrupt indicates the persisted document could not be parsed.
	ErrCorrupt = errors.New("cache file corrupted")

	// ErrRefreshInProgress indicates a refresh is already running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// Store reads and writes the snapshot document. Every write replaces
// the whole file; there is no partial update.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a store backed by the given file path. A missing
// file is the valid "never refreshed" state.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}, nil
}

// Read returns the cached snapshot, or false when none is available.
// A missing or corrupt file degrades to absent rather than surfacing
// an error; corruption is logged.
func (s *Store) Read() (*model.Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed", zap.String("path", s.path), zap.Error(err))
		}
		return nil, false
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("cache read failed",
			zap.String("path", s.path),
			zap.Error(fmt.Errorf("%w: %v", ErrCorrupt, err)))
		return nil, false
	}
	return &snapshot, true
}

// Write persists the snapshot, atomically replacing prior content.
func (s *Store) Write(snapshot *model.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Write atomically
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	return nil
}
