// Package fetch assembles snapshots from the upstream API: project
// metadata, the work-item listing, and the day-by-day time-entry
// backfill.
package fetch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/timeboard/internal/model"
	"github.com/fyrsmithlabs/timeboard/internal/upstream"
)

// batchSize bounds the number of per-day requests in flight at once.
// Batches run strictly sequentially: the next batch does not start
// until every request of the current one has settled.
const batchSize = 15

// API is the slice of the upstream client the fetcher needs.
type API interface {
	Project(ctx context.Context, id int64) (*model.Project, error)
	WorkItems(ctx context.Context, projectID int64) ([]upstream.WorkItem, error)
	TimeEntries(ctx context.Context, date string, userIDs []int64) ([]model.TimeEntry, error)
}

// Service assembles snapshots from the upstream API.
type Service struct {
	api       API
	projectID int64
	logger    *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a fetcher for one project.
func NewService(api API, projectID int64, logger *zap.Logger) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("api cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:       api,
		projectID: projectID,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// FetchSnapshot pulls project metadata, work items and the full
// time-entry history and assembles one snapshot.
//
// Project and work-item failures abort the refresh. A failing per-day
// time-entry request only loses that day: it is logged and contributes
// zero entries.
func (s *Service) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.fetchSnapshot(ctx)
	RefreshDuration.Observe(time.Since(start).Seconds())
	recordRefreshResult(err == nil)
	if err != nil {
		return nil, err
	}
	EntriesFetched.Set(float64(len(snapshot.TimeEntries)))
	return snapshot, nil
}

func (s *Service) fetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	project, err := s.api.Project(ctx, s.projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching project %d: %w", s.projectID, err)
	}

	items, err := s.api.WorkItems(ctx, s.projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching work items: %w", err)
	}

	tasks, groups := partition(items)
	userIDs := resourceIDs(tasks)
	dates := s.backfillDates(project)

	s.logger.Info("fetching time entries",
		zap.Int("tasks", len(tasks)),
		zap.Int("groups", len(groups)),
		zap.Int("resources", len(userIDs)),
		zap.Int("days", len(dates)))

	entries := s.fetchEntries(ctx, dates, userIDs)

	return &model.Snapshot{
		ID:          uuid.New().String(),
		Project:     *project,
		Tasks:       tasks,
		Groups:      groups,
		TimeEntries: entries,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// partition splits work items into tasks (task or milestone) and
// groups. Items of any other type are dropped.
func partition(items []upstream.WorkItem) ([]model.Task, []model.Group) {
	tasks := make([]model.Task, 0, len(items))
	groups := make([]model.Group, 0)
	for _, item := range items {
		switch item.Type {
		case model.TypeTask, model.TypeMilestone:
			tasks = append(tasks, model.Task{
				ID:              item.ID,
				Type:            item.Type,
				Name:            item.Name,
				StartDate:       item.StartDate,
				EndDate:         item.EndDate,
				PercentComplete: item.PercentComplete,
				GroupID:         item.GroupID,
				Resources:       item.Resources,
			})
		case model.TypeGroup:
			groups = append(groups, model.Group{ID: item.ID, Name: item.Name})
		}
	}
	return tasks, groups
}

// resourceIDs collects the distinct resource ids referenced by any
// task assignment, sorted for deterministic request parameters.
func resourceIDs(tasks []model.Task) []int64 {
	seen := make(map[int64]struct{})
	for _, t := range tasks {
		for _, r := range t.Resources {
			seen[r.ResourceID()] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// backfillDates enumerates the closed range from the project start to
// the earlier of the project end and today. An end before the start
// yields an empty range and no time-entry requests.
func (s *Service) backfillDates(project *model.Project) []string {
	start, ok := model.ParseDate(project.StartDate)
	if !ok {
		s.logger.Warn("project has no parseable start date, skipping time entries",
			zap.String("start_date", project.StartDate))
		return nil
	}

	end := model.Midnight(s.now())
	if projectEnd, ok := model.ParseDate(project.EndDate); ok && projectEnd.Before(end) {
		end = projectEnd
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(model.DateLayout))
	}
	return dates
}

// fetchEntries runs the per-day requests in sequential batches of
// batchSize, then filters to the target project and deduplicates by
// entry id across all days.
func (s *Service) fetchEntries(ctx context.Context, dates []string, userIDs []int64) []model.TimeEntry {
	perDay := make([][]model.TimeEntry, len(dates))

	for batchStart := 0; batchStart < len(dates); batchStart += batchSize {
		batchEnd := batchStart + batchSize
		if batchEnd > len(dates) {
			batchEnd = len(dates)
		}

		var wg sync.WaitGroup
		for i := batchStart; i < batchEnd; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				entries, err := s.api.TimeEntries(ctx, dates[i], userIDs)
				if err != nil {
					// A lost day must not sink a backfill spanning months.
					DayRequestsTotal.WithLabelValues("error").Inc()
					s.logger.Warn("time-entry request failed",
						zap.String("date", dates[i]),
						zap.Error(err))
					return
				}
				DayRequestsTotal.WithLabelValues("success").Inc()
				perDay[i] = entries
			}(i)
		}
		wg.Wait()
	}

	// The endpoint is not known to be strictly project-scoped, and an
	// entry may come back from more than one day query.
	seen := make(map[int64]struct{})
	deduped := make([]model.TimeEntry, 0)
	for _, entries := range perDay {
		for _, e := range entries {
			if e.ProjectID != s.projectID {
				continue
			}
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			deduped = append(deduped, e)
		}
	}
	return deduped
}
