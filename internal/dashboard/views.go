package dashboard

import (
	"fmt"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/timeboard/internal/aggregate"
)

const (
	chartWidth  = 48
	chartHeight = 8
)

var barStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("27")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("21")),
}

// teamBarChart renders one bar per team.
func teamBarChart(teams []aggregate.TeamHours) string {
	if len(teams) == 0 {
		return dimStyle.Render("no hours logged")
	}

	bc := barchart.New(chartWidth, chartHeight)
	for i, t := range teams {
		bc.Push(barchart.BarData{
			Label: t.Team,
			Values: []barchart.BarValue{
				{Name: t.Team, Value: t.Hours, Style: barStyles[i%len(barStyles)]},
			},
		})
	}
	bc.Draw()
	return bc.View()
}

// renderOverview shows snapshot-wide totals, the team-hours chart and
// the task status breakdown.
func (m Model) renderOverview() string {
	now := m.now()
	dir := m.views.Directory(m.snapshot)

	// Date-agnostic: entries without a derivable date are invisible to
	// the week-bucketed tabs but still belong in these totals.
	teams, grand := aggregate.TeamTotals(m.snapshot, dir)

	var byStatus = map[aggregate.Status][]string{}
	for _, t := range m.snapshot.Tasks {
		status := aggregate.Classify(t, now)
		byStatus[status] = append(byStatus[status], t.Name)
	}

	var content string
	content += sectionStyle.Render("Project totals") + "\n"
	content += labelStyle.Render("Total hours   ") + valueStyle.Render(fmtHours(grand)) + "\n"
	content += labelStyle.Render("Members       ") + valueStyle.Render(fmt.Sprintf("%d", len(dir.Members()))) + "\n"
	content += labelStyle.Render("Tasks         ") + valueStyle.Render(fmt.Sprintf("%d", len(m.snapshot.Tasks))) +
		dimStyle.Render(fmt.Sprintf("  (%d complete, %d overdue, %d upcoming, %d active)",
			len(byStatus[aggregate.StatusComplete]),
			len(byStatus[aggregate.StatusOverdue]),
			len(byStatus[aggregate.StatusUpcoming]),
			len(byStatus[aggregate.StatusActive]))) + "\n"

	content += sectionStyle.Render("Hours by team") + "\n"
	content += teamBarChart(teams) + "\n"

	if overdue := byStatus[aggregate.StatusOverdue]; len(overdue) > 0 {
		content += sectionStyle.Render("Overdue tasks") + "\n"
		for _, name := range overdue {
			content += errorStyle.Render("• ") + name + "\n"
		}
	}
	if upcoming := byStatus[aggregate.StatusUpcoming]; len(upcoming) > 0 {
		content += sectionStyle.Render("Due within 14 days") + "\n"
		for _, name := range upcoming {
			content += warningStyle.Render("• ") + name + "\n"
		}
	}

	return content
}

// renderWeekly shows one Monday-to-Sunday window with leaderboards
// and the per-task breakdown.
func (m Model) renderWeekly() string {
	view := aggregate.BuildWeeklyView(m.snapshot, m.views.Directory(m.snapshot), m.weekOffset, m.now())

	var content string
	weekLabel := fmt.Sprintf("%s  (%s – %s)",
		aggregate.WeekID(view.WeekStart),
		view.WeekStart.Format("Jan 02"),
		view.WeekEnd.Format("Jan 02, 2006"))
	if m.weekOffset == 0 {
		weekLabel += "  · current week"
	}

	content += sectionStyle.Render("Week "+weekLabel) + "\n"
	content += labelStyle.Render("Hours   ") + valueStyle.Render(fmtHours(view.TotalHours)) +
		labelStyle.Render("   Members  ") + valueStyle.Render(fmt.Sprintf("%d", view.ActiveMembers)) +
		labelStyle.Render("   Tasks  ") + valueStyle.Render(fmt.Sprintf("%d", view.ActiveTasks)) + "\n"

	content += sectionStyle.Render("Hours by team") + "\n"
	content += teamBarChart(view.TeamBars) + "\n"

	content += sectionStyle.Render("Top 10") + "\n"
	content += leaderboard(view.Top)
	content += sectionStyle.Render("Bottom 10") + "\n"
	content += leaderboard(view.Bottom)

	content += sectionStyle.Render("Tasks") + "\n"
	rows := make([][]string, 0, len(view.Tasks))
	for _, t := range view.Tasks {
		members := ""
		for i, mh := range t.ByMember {
			if i > 0 {
				members += ", "
			}
			members += fmt.Sprintf("%s (%s)", mh.Member.FullName, fmtHours(mh.Hours))
		}
		rows = append(rows, []string{t.Name, t.GroupName, fmtHours(t.Hours), dueBadgeLabel(t.Due), members})
	}
	content += renderTable([]string{"Task", "Group", "Hours", "Due", "Members"}, rows)

	return content
}

func leaderboard(members []aggregate.MemberHours) string {
	rows := make([][]string, 0, len(members))
	for i, mh := range members {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			mh.Member.FullName,
			mh.Member.Team,
			fmtHours(mh.Hours),
		})
	}
	return renderTable([]string{"#", "Member", "Team", "Hours"}, rows)
}

func dueBadgeLabel(b aggregate.DueBadge) string {
	switch b.Severity {
	case aggregate.DueOverdue:
		return errorStyle.Render(b.Label)
	case aggregate.DueThisWeek:
		return warningStyle.Render(b.Label)
	case aggregate.DueSoon:
		return warningStyle.Render(b.Label)
	case aggregate.DueLater:
		return dimStyle.Render(b.Label)
	default:
		return ""
	}
}

// renderPivot renders a rows-by-week pivot table. A week a row never
// touched shows a dim dot; a logged zero shows as 0.0. The totals sum
// both the same way.
func renderPivot(title string, pivot *aggregate.Pivot) string {
	headers := make([]string, 0, len(pivot.Weeks)+2)
	headers = append(headers, "")
	for _, week := range pivot.Weeks {
		label := week
		if monday, ok := aggregate.WeekMonday(week); ok {
			label = fmt.Sprintf("%s (%s)", week, monday.Format("Jan 02"))
		}
		headers = append(headers, label)
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(pivot.Rows))
	for _, row := range pivot.Rows {
		cells := make([]string, 0, len(headers))
		key := row.Key
		if row.Kind != aggregate.RowData {
			key = tableTotalStyle.Render(key)
		}
		cells = append(cells, key)
		for _, week := range pivot.Weeks {
			v, ok := row.Cells[week]
			switch {
			case !ok:
				cells = append(cells, dimStyle.Render("·"))
			case row.Kind != aggregate.RowData:
				cells = append(cells, tableTotalStyle.Render(fmtHours(v)))
			default:
				cells = append(cells, fmtHours(v))
			}
		}
		total := fmtHours(row.Total)
		if row.Kind != aggregate.RowData {
			total = tableTotalStyle.Render(total)
		}
		cells = append(cells, total)
		rows = append(rows, cells)
	}

	return sectionStyle.Render(title) + "\n" + renderTable(headers, rows)
}

func fmtHours(h float64) string {
	return fmt.Sprintf("%.1f", h)
}
