package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// leaderboardSize is how many members the top and bottom performer
// lists each hold. With fewer than twice this many active members the
// two lists overlap; that is deliberate and kept.
const leaderboardSize = 10

// DueSeverity grades a task's due badge for styling.
type DueSeverity string

const (
	DueOverdue  DueSeverity = "overdue"
	DueThisWeek DueSeverity = "this_week"
	DueSoon     DueSeverity = "soon"
	DueLater    DueSeverity = "later"
	DueNone     DueSeverity = "none"
)

// DueBadge is the due-status label for a task, computed relative to
// the weekly window's Monday rather than today.
type DueBadge struct {
	Label    string      `json:"label"`
	Severity DueSeverity `json:"severity"`
}

// TeamHours is one bar of the team-hours chart.
type TeamHours struct {
	Team  string  `json:"team"`
	Hours float64 `json:"hours"`
}

// MemberHours is one leaderboard row.
type MemberHours struct {
	Member Member  `json:"member"`
	Hours  float64 `json:"hours"`
}

// TaskWeekly is the per-task aggregate of one weekly window.
type TaskWeekly struct {
	TaskID    int64         `json:"task_id"`
	Name      string        `json:"name"`
	GroupName string        `json:"group_name"`
	Hours     float64       `json:"hours"`
	ByMember  []MemberHours `json:"by_member"`
	Due       DueBadge      `json:"due"`
}

// WeeklyView is everything the weekly tab renders for one window.
type WeeklyView struct {
	Offset        int           `json:"offset"`
	WeekStart     time.Time     `json:"week_start"`
	WeekEnd       time.Time     `json:"week_end"`
	TotalHours    float64       `json:"total_hours"`
	ActiveMembers int           `json:"active_members"`
	ActiveTasks   int           `json:"active_tasks"`
	TeamBars      []TeamHours   `json:"team_bars"`
	Top           []MemberHours `json:"top"`
	Bottom        []MemberHours `json:"bottom"`
	Tasks         []TaskWeekly  `json:"tasks"`
}

// BuildWeeklyView aggregates one Monday-to-Sunday window. Offset is
// whole weeks from the current week: 0 is the week containing now,
// negative offsets are the past. Members of excluded teams contribute
// no hours anywhere in the view.
func BuildWeeklyView(s *model.Snapshot, dir *Directory, offset int, now time.Time) *WeeklyView {
	weekStart := MondayOf(now).AddDate(0, 0, offset*7)
	weekEnd := weekStart.AddDate(0, 0, 6)

	taskByID := make(map[int64]model.Task, len(s.Tasks))
	for _, t := range s.Tasks {
		taskByID[t.ID] = t
	}
	groupByID := make(map[int64]model.Group, len(s.Groups))
	for _, g := range s.Groups {
		groupByID[g.ID] = g
	}

	var total float64
	memberHours := make(map[int64]float64)
	teamHours := make(map[string]float64)
	taskHours := make(map[int64]float64)
	taskMemberHours := make(map[int64]map[int64]float64)

	for _, e := range s.TimeEntries {
		date, ok := EntryDate(e)
		if !ok || date.Before(weekStart) || date.After(weekEnd) {
			continue
		}
		member, ok := dir.Lookup(entryUserID(e))
		if !ok || member.Excluded() {
			continue
		}

		hours := EntryHours(e)
		total += hours
		memberHours[member.ID] += hours
		teamHours[member.Team] += hours
		taskHours[e.TaskID] += hours
		if taskMemberHours[e.TaskID] == nil {
			taskMemberHours[e.TaskID] = make(map[int64]float64)
		}
		taskMemberHours[e.TaskID][member.ID] += hours
	}

	view := &WeeklyView{
		Offset:        offset,
		WeekStart:     weekStart,
		WeekEnd:       weekEnd,
		TotalHours:    total,
		ActiveMembers: len(memberHours),
		ActiveTasks:   len(taskHours),
		TeamBars:      sortedTeamHours(teamHours),
	}

	ranked := rankMembers(memberHours, dir)
	view.Top = headMembers(ranked, leaderboardSize)
	view.Bottom = tailMembers(ranked, leaderboardSize)

	for taskID, hours := range taskHours {
		tw := TaskWeekly{
			TaskID:   taskID,
			Name:     fmt.Sprintf("task #%d", taskID),
			Hours:    hours,
			ByMember: rankMembers(taskMemberHours[taskID], dir),
		}
		if t, ok := taskByID[taskID]; ok {
			tw.Name = t.Name
			tw.Due = dueBadge(t.EndDate, weekStart)
			if g, ok := groupByID[t.GroupID]; ok {
				tw.GroupName = g.Name
			}
		}
		view.Tasks = append(view.Tasks, tw)
	}
	sort.Slice(view.Tasks, func(i, j int) bool {
		if view.Tasks[i].Hours != view.Tasks[j].Hours {
			return view.Tasks[i].Hours > view.Tasks[j].Hours
		}
		return view.Tasks[i].Name < view.Tasks[j].Name
	})

	return view
}

// dueBadge grades a due date against the window's Monday. Tasks due
// before the window are overdue even when the window is in the past.
func dueBadge(endDate string, weekStart time.Time) DueBadge {
	end, ok := model.ParseDate(endDate)
	if !ok {
		return DueBadge{Label: "", Severity: DueNone}
	}
	if end.Before(weekStart) {
		return DueBadge{Label: "overdue", Severity: DueOverdue}
	}
	if !end.After(weekStart.AddDate(0, 0, 6)) {
		return DueBadge{Label: "due this week", Severity: DueThisWeek}
	}
	days := int(end.Sub(weekStart).Hours() / 24)
	label := fmt.Sprintf("%dd left", days)
	if days <= upcomingWindowDays {
		return DueBadge{Label: label, Severity: DueSoon}
	}
	return DueBadge{Label: label, Severity: DueLater}
}

// rankMembers sorts hours descending, breaking ties by full name so
// repeated builds from one snapshot agree.
func rankMembers(hours map[int64]float64, dir *Directory) []MemberHours {
	out := make([]MemberHours, 0, len(hours))
	for id, h := range hours {
		m, _ := dir.Lookup(id)
		out = append(out, MemberHours{Member: m, Hours: h})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Member.FullName < out[j].Member.FullName
	})
	return out
}

// headMembers is the top of the descending ranking.
func headMembers(ranked []MemberHours, n int) []MemberHours {
	if len(ranked) < n {
		n = len(ranked)
	}
	return append([]MemberHours(nil), ranked[:n]...)
}

// tailMembers is the ascending tail of the same descending ranking,
// lowest hours first. Not a separate ascending sort: with fewer than
// 2n members the head and tail overlap, and that overlap is kept.
func tailMembers(ranked []MemberHours, n int) []MemberHours {
	if len(ranked) < n {
		n = len(ranked)
	}
	out := make([]MemberHours, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		out = append(out, ranked[i])
	}
	return out
}

func sortedTeamHours(teamHours map[string]float64) []TeamHours {
	out := make([]TeamHours, 0, len(teamHours))
	for team, h := range teamHours {
		out = append(out, TeamHours{Team: team, Hours: h})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Team < out[j].Team
	})
	return out
}
