package aggregate

import (
	"time"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// EntryHours returns the hours an entry counts for: the explicit
// hours field when present, else the start/end timestamp delta,
// else zero.
func EntryHours(e model.TimeEntry) float64 {
	if e.Hours != nil {
		return *e.Hours
	}
	start, err1 := time.Parse(time.RFC3339, e.Start)
	end, err2 := time.Parse(time.RFC3339, e.End)
	if err1 != nil || err2 != nil {
		return 0
	}
	return end.Sub(start).Hours()
}

// EntryDate returns the calendar date an entry is bucketed under:
// the explicit date field, else the date portion of the start
// timestamp, else the start-date field, else the end-date field.
// Entries with none of these are excluded from date-bucketed views.
func EntryDate(e model.TimeEntry) (time.Time, bool) {
	for _, candidate := range []string{e.Date, e.Start, e.StartDate, e.EndDate} {
		if d, ok := model.ParseDate(candidate); ok {
			return d, true
		}
	}
	return time.Time{}, false
}
