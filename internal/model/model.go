// Package model defines the snapshot document shared by the fetcher,
// the cache store, and the dashboard aggregations.
package model

import "time"

// DateLayout is the calendar-date form used by the upstream API.
const DateLayout = "2006-01-02"

// Work item types recognized in upstream listings.
const (
	TypeTask      = "task"
	TypeMilestone = "milestone"
	TypeGroup     = "group"
)

// Snapshot is one full fetched copy of project, task and time-entry
// data. It is immutable once written and wholly replaced on refresh.
// ID changes with every refresh and keys derived-view memoization.
type Snapshot struct {
	ID          string      `json:"id"`
	Project     Project     `json:"project"`
	Tasks       []Task      `json:"tasks"`
	Groups      []Group     `json:"groups"`
	TimeEntries []TimeEntry `json:"time_entries"`
	FetchedAt   time.Time   `json:"fetched_at"`
}

// Project holds the upstream project metadata the fetcher needs,
// chiefly the start/end dates bounding the time-entry backfill.
type Project struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Task is a work item of type task or milestone. Dates are calendar
// strings in DateLayout; empty means the upstream value was null,
// which is legal for milestones.
type Task struct {
	ID              int64      `json:"id"`
	Type            string     `json:"type"`
	Name            string     `json:"name"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	PercentComplete float64    `json:"percent_complete"`
	GroupID         int64      `json:"group_id"`
	Resources       []Resource `json:"resources"`
}

// Resource is a person assigned to a task. Upstream emits both a
// project-scoped type_id and a bare id; type_id wins when present.
type Resource struct {
	ID     int64  `json:"id"`
	TypeID int64  `json:"type_id"`
	Name   string `json:"name"`
}

// ResourceID returns the canonical id for the assignment.
func (r Resource) ResourceID() int64 {
	if r.TypeID != 0 {
		return r.TypeID
	}
	return r.ID
}

// Group is a work item of type group, used only to label a task's
// parent for display.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EntryUser is the user object embedded in a time entry.
type EntryUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TimeEntry is one logged unit of work. Hours is a pointer so an
// explicit zero survives the trip through JSON; when nil the hours are
// derived from the Start/End timestamps.
type TimeEntry struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	TaskID    int64      `json:"task_id"`
	ProjectID int64      `json:"project_id"`
	Date      string     `json:"date,omitempty"`
	Start     string     `json:"start,omitempty"`
	End       string     `json:"end,omitempty"`
	StartDate string     `json:"start_date,omitempty"`
	EndDate   string     `json:"end_date,omitempty"`
	Hours     *float64   `json:"hours,omitempty"`
	User      *EntryUser `json:"user,omitempty"`
}

// ParseDate parses a DateLayout calendar date. It also accepts a
// leading date in a longer timestamp, which upstream emits for some
// fields. Returns false for empty or malformed input.
func ParseDate(s string) (time.Time, bool) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Midnight truncates t to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
