package aggregate

import (
	"fmt"
	"time"
)

// WeekID returns the ISO-8601 week identifier for a date, in the
// YYYY-Www form. Weeks start Monday; the week containing the year's
// first Thursday is week 1.
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MondayOf returns the Monday of t's ISO week, at t's midnight.
func MondayOf(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -offset+1)
}

// WeekMonday resolves a YYYY-Www identifier back to that week's
// Monday, for display labels.
func WeekMonday(id string) (time.Time, bool) {
	var year, week int
	if _, err := fmt.Sscanf(id, "%d-W%d", &year, &week); err != nil {
		return time.Time{}, false
	}
	if week < 1 || week > 53 {
		return time.Time{}, false
	}
	// January 4th is always inside ISO week 1.
	week1 := MondayOf(time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC))
	return week1.AddDate(0, 0, (week-1)*7), true
}
