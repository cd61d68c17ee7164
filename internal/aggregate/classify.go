package aggregate

import (
	"time"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// Status is the derived task classification. Derived, never stored.
type Status string

const (
	StatusComplete Status = "complete"
	StatusOverdue  Status = "overdue"
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
)

// upcomingWindowDays is how far ahead a due date may lie and still
// count as upcoming, inclusive.
const upcomingWindowDays = 14

// Classify derives the task status from percent-complete and the end
// date, with now truncated to midnight. Precedence: complete,
// overdue, upcoming, active. A milestone with no end date and not
// complete is active.
func Classify(t model.Task, now time.Time) Status {
	if t.PercentComplete >= 100 {
		return StatusComplete
	}

	today := model.Midnight(now)
	end, ok := model.ParseDate(t.EndDate)
	if !ok {
		return StatusActive
	}
	if end.Before(today) {
		return StatusOverdue
	}
	if !end.After(today.AddDate(0, 0, upcomingWindowDays)) {
		return StatusUpcoming
	}
	return StatusActive
}
