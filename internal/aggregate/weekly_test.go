package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// testNow is a Wednesday; the surrounding week runs 2024-06-10 to
// 2024-06-16.
var testNow = time.Date(2024, 6, 12, 11, 0, 0, 0, time.UTC)

func hoursPtr(h float64) *float64 { return &h }

// testSnapshot covers two ISO weeks, three teams (one excluded) and
// three tasks.
func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		ID: "snap-1",
		Project: model.Project{
			ID: 42, Name: "Apollo", StartDate: "2024-06-01", EndDate: "2024-12-31",
		},
		Groups: []model.Group{
			{ID: 100, Name: "Backend"},
			{ID: 101, Name: "Design"},
		},
		Tasks: []model.Task{
			{ID: 1, Type: model.TypeTask, Name: "Build API", GroupID: 100,
				StartDate: "2024-06-01", EndDate: "2024-06-20", PercentComplete: 40,
				Resources: []model.Resource{
					{TypeID: 7, Name: "ENG - Jane Doe - LEAD"},
					{TypeID: 8, Name: "ENG - Bob Ray - MEM"},
				}},
			{ID: 2, Type: model.TypeTask, Name: "Mockups", GroupID: 101,
				StartDate: "2024-06-01", EndDate: "2024-06-05", PercentComplete: 90,
				Resources: []model.Resource{
					{TypeID: 9, Name: "PLAN - Kim Oh - MEMBER"},
				}},
			{ID: 3, Type: model.TypeMilestone, Name: "Launch", GroupID: 100,
				EndDate: "2024-09-01",
				Resources: []model.Resource{
					{TypeID: 7, Name: "ENG - Jane Doe - LEAD"},
				}},
		},
		TimeEntries: []model.TimeEntry{
			// Current week (2024-06-10 .. 2024-06-16).
			{ID: 1, UserID: 7, TaskID: 1, ProjectID: 42, Date: "2024-06-10", Hours: hoursPtr(6)},
			{ID: 2, UserID: 7, TaskID: 1, ProjectID: 42, Date: "2024-06-11", Hours: hoursPtr(2)},
			{ID: 3, UserID: 8, TaskID: 1, ProjectID: 42, Date: "2024-06-12", Hours: hoursPtr(4)},
			{ID: 4, UserID: 9, TaskID: 2, ProjectID: 42, Date: "2024-06-16", Hours: hoursPtr(3)},
			// Excluded team: present in the directory, absent from
			// every aggregate.
			{ID: 5, UserID: 10, TaskID: 1, ProjectID: 42, Date: "2024-06-12", Hours: hoursPtr(8),
				User: &model.EntryUser{ID: 10, Name: "DLA - Max Berg - MEM"}},
			// Previous week (2024-06-03 .. 2024-06-09).
			{ID: 6, UserID: 7, TaskID: 1, ProjectID: 42, Date: "2024-06-03", Hours: hoursPtr(5)},
			{ID: 7, UserID: 9, TaskID: 2, ProjectID: 42, Date: "2024-06-07", Hours: hoursPtr(1)},
			// A logged zero inside the current week.
			{ID: 8, UserID: 8, TaskID: 2, ProjectID: 42, Date: "2024-06-13", Hours: hoursPtr(0)},
			// No date source at all: left out of date-bucketed views.
			{ID: 9, UserID: 7, TaskID: 1, ProjectID: 42, Hours: hoursPtr(7)},
		},
		FetchedAt: testNow,
	}
}

func TestBuildWeeklyView(t *testing.T) {
	snapshot := testSnapshot()
	dir := BuildDirectory(snapshot)

	t.Run("current week totals", func(t *testing.T) {
		view := BuildWeeklyView(snapshot, dir, 0, testNow)

		assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), view.WeekStart)
		assert.Equal(t, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), view.WeekEnd)
		// 6+2+4+3+0; the excluded-team entry and the dateless entry
		// contribute nothing.
		assert.Equal(t, 15.0, view.TotalHours)
		assert.Equal(t, 3, view.ActiveMembers)
		assert.Equal(t, 2, view.ActiveTasks)
	})

	t.Run("member team and grand totals agree", func(t *testing.T) {
		view := BuildWeeklyView(snapshot, dir, 0, testNow)

		var memberSum, teamSum float64
		for _, mh := range rankAll(view) {
			memberSum += mh.Hours
		}
		for _, th := range view.TeamBars {
			teamSum += th.Hours
		}
		assert.Equal(t, view.TotalHours, memberSum)
		assert.Equal(t, view.TotalHours, teamSum)
	})

	t.Run("top and bottom overlap below twenty members", func(t *testing.T) {
		view := BuildWeeklyView(snapshot, dir, 0, testNow)

		require.Len(t, view.Top, 3)
		require.Len(t, view.Bottom, 3)
		assert.Equal(t, "Jane Doe", view.Top[0].Member.FullName)
		assert.Equal(t, 8.0, view.Top[0].Hours)
		// Bottom is the ascending tail of the same ranking.
		assert.Equal(t, 3.0, view.Bottom[0].Hours)
		assert.Equal(t, view.Top[0].Member.ID, view.Bottom[2].Member.ID)
	})

	t.Run("previous week via negative offset", func(t *testing.T) {
		view := BuildWeeklyView(snapshot, dir, -1, testNow)

		assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), view.WeekStart)
		assert.Equal(t, 6.0, view.TotalHours)
		assert.Equal(t, 2, view.ActiveMembers)
	})

	t.Run("task breakdown carries group and members", func(t *testing.T) {
		view := BuildWeeklyView(snapshot, dir, 0, testNow)

		require.NotEmpty(t, view.Tasks)
		api := view.Tasks[0]
		assert.Equal(t, "Build API", api.Name)
		assert.Equal(t, "Backend", api.GroupName)
		assert.Equal(t, 12.0, api.Hours)
		require.Len(t, api.ByMember, 2)
		assert.Equal(t, "Jane Doe", api.ByMember[0].Member.FullName)
		assert.Equal(t, 8.0, api.ByMember[0].Hours)
	})

	t.Run("due badges are relative to the window monday", func(t *testing.T) {
		view := BuildWeeklyView(snapshot, dir, 0, testNow)

		badges := make(map[string]DueBadge)
		for _, task := range view.Tasks {
			badges[task.Name] = task.Due
		}
		// Due 2024-06-20: 10 days from the window Monday.
		assert.Equal(t, DueSoon, badges["Build API"].Severity)
		assert.Equal(t, "10d left", badges["Build API"].Label)
		// Due 2024-06-05: before the window start.
		assert.Equal(t, DueOverdue, badges["Mockups"].Severity)
	})

	t.Run("empty window", func(t *testing.T) {
		view := BuildWeeklyView(snapshot, dir, -10, testNow)

		assert.Zero(t, view.TotalHours)
		assert.Zero(t, view.ActiveMembers)
		assert.Empty(t, view.Tasks)
		assert.Empty(t, view.Top)
	})
}

func TestDueBadge(t *testing.T) {
	weekStart := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return weekStart.AddDate(0, 0, offset).Format(model.DateLayout)
	}

	cases := []struct {
		offset   int
		severity DueSeverity
		label    string
	}{
		{-1, DueOverdue, "overdue"},
		{0, DueThisWeek, "due this week"},
		{6, DueThisWeek, "due this week"},
		{7, DueSoon, "7d left"},
		{14, DueSoon, "14d left"},
		{15, DueLater, "15d left"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("offset %d", tc.offset), func(t *testing.T) {
			badge := dueBadge(day(tc.offset), weekStart)
			assert.Equal(t, tc.severity, badge.Severity)
			assert.Equal(t, tc.label, badge.Label)
		})
	}

	t.Run("no end date", func(t *testing.T) {
		assert.Equal(t, DueNone, dueBadge("", weekStart).Severity)
	})
}

// rankAll merges top and bottom into the distinct set of ranked
// members, using overlap-safe union by member id.
func rankAll(view *WeeklyView) []MemberHours {
	seen := make(map[int64]bool)
	var out []MemberHours
	for _, list := range [][]MemberHours{view.Top, view.Bottom} {
		for _, mh := range list {
			if !seen[mh.Member.ID] {
				seen[mh.Member.ID] = true
				out = append(out, mh)
			}
		}
	}
	return out
}
