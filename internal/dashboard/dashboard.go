package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/timeboard/internal/aggregate"
	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// Tabs of the dashboard, in display order.
const (
	tabOverview = iota
	tabWeekly
	tabMembers
	tabTeams
	tabTasks
	tabCount
)

var tabNames = [tabCount]string{"Overview", "Weekly", "Members", "Teams", "Tasks"}

// Lipgloss styles
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("24")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	healthyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)
)

// Message types
type dataMsg struct {
	snapshot *model.Snapshot
	cached   bool
}
type refreshDoneMsg struct {
	snapshot *model.Snapshot
}
type refreshErrMsg struct{ err error }
type errMsg struct{ err error }

// Model is the bubbletea model for the dashboard.
type Model struct {
	client *Client
	views  *aggregate.Views

	snapshot   *model.Snapshot
	cached     bool
	tab        int
	weekOffset int

	refreshing bool
	spin       spinner.Model
	loaded     bool
	err        error
	quitting   bool

	// now is swappable for tests.
	now func() time.Time
}

// NewModel creates a dashboard model for the given server client.
func NewModel(client *Client) Model {
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	return Model{
		client: client,
		views:  aggregate.NewViews(),
		spin:   spin,
		now:    time.Now,
	}
}

// Init loads the cached snapshot.
func (m Model) Init() tea.Cmd {
	return loadData(m.client)
}

// loadData fetches the cached snapshot from the server.
func loadData(client *Client) tea.Cmd {
	return func() tea.Msg {
		snapshot, cached, err := client.Data(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return dataMsg{snapshot: snapshot, cached: cached}
	}
}

// runRefresh triggers a server-side refresh and waits for it. No
// timeout: a long backfill simply takes as long as it takes.
func runRefresh(client *Client) tea.Cmd {
	return func() tea.Msg {
		snapshot, err := client.Refresh(context.Background())
		if err != nil {
			return refreshErrMsg{err}
		}
		return refreshDoneMsg{snapshot: snapshot}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.refreshing {
				return m, nil
			}
			m.refreshing = true
			m.err = nil
			return m, tea.Batch(m.spin.Tick, runRefresh(m.client))
		case "tab", "right":
			if msg.String() == "right" && m.tab == tabWeekly {
				m.weekOffset++
				return m, nil
			}
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		case "shift+tab", "left":
			if msg.String() == "left" && m.tab == tabWeekly {
				m.weekOffset--
				return m, nil
			}
			m.tab = (m.tab + tabCount - 1) % tabCount
			return m, nil
		case "0":
			m.weekOffset = 0
			return m, nil
		case "1", "2", "3", "4", "5":
			m.tab = int(msg.String()[0] - '1')
			return m, nil
		}

	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case dataMsg:
		m.snapshot = msg.snapshot
		m.cached = msg.cached
		m.loaded = true
		return m, nil

	case refreshDoneMsg:
		m.refreshing = false
		m.snapshot = msg.snapshot
		m.cached = true
		m.loaded = true
		m.err = nil
		return m, nil

	case refreshErrMsg:
		// Keep showing the last good snapshot and re-pull the cache
		// in case another caller refreshed it meanwhile.
		m.refreshing = false
		m.err = msg.err
		return m, loadData(m.client)

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil && m.snapshot == nil {
		return m.renderError()
	}
	return m.renderDashboard()
}

// renderError renders the terminal error view, reached only when
// there is no snapshot to fall back to.
func (m Model) renderError() string {
	header := headerStyle.Render("timeboard")

	var content string
	content += "\n"
	content += errorStyle.Render("⚠ Cannot reach the timeboard server") + "\n"
	content += "\n"
	content += dimStyle.Render("Error: ") + errorStyle.Render(m.err.Error()) + "\n"
	content += "\n"
	content += footerStyle.Render("[q] quit  [r] retry refresh") + "\n"

	return containerStyle.Render(header + "\n" + content)
}

func (m Model) renderDashboard() string {
	var content string

	content += m.renderHeader()
	content += "\n" + m.renderTabs() + "\n"

	switch {
	case !m.loaded:
		content += "\n" + dimStyle.Render("loading…") + "\n"
	case m.snapshot == nil:
		content += "\n" + dimStyle.Render("No cached snapshot yet. Press ") +
			footerKeyStyle.Render("r") + dimStyle.Render(" to refresh.") + "\n"
	default:
		switch m.tab {
		case tabOverview:
			content += m.renderOverview()
		case tabWeekly:
			content += m.renderWeekly()
		case tabMembers:
			content += renderPivot("Hours by member", m.views.MemberPivot(m.snapshot))
		case tabTeams:
			content += renderPivot("Hours by team", m.views.TeamPivot(m.snapshot))
		case tabTasks:
			content += renderPivot("Hours by task", m.views.TaskPivot(m.snapshot))
		}
	}

	if m.err != nil {
		content += "\n" + warningStyle.Render("refresh failed: ") + dimStyle.Render(m.err.Error()) +
			dimStyle.Render(" (showing last cached snapshot)") + "\n"
	}

	content += m.renderFooter()
	return containerStyle.Render(content)
}

func (m Model) renderHeader() string {
	title := "timeboard"
	if m.snapshot != nil && m.snapshot.Project.Name != "" {
		title += " · " + m.snapshot.Project.Name
	}
	header := headerStyle.Render(title)

	if m.refreshing {
		return header + "  " + m.spin.View() + dimStyle.Render("refreshing…")
	}
	if m.snapshot != nil {
		return header + "  " + dimStyle.Render("fetched "+m.snapshot.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	return header
}

func (m Model) renderTabs() string {
	var out string
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if i == m.tab {
			out += tabActiveStyle.Render(label)
		} else {
			out += tabStyle.Render(label)
		}
	}
	return out
}

func (m Model) renderFooter() string {
	keys := []struct{ key, help string }{
		{"1-5", "tabs"},
		{"←/→", "week"},
		{"0", "this week"},
		{"r", "refresh"},
		{"q", "quit"},
	}
	var out string
	for _, k := range keys {
		out += footerKeyStyle.Render("["+k.key+"] ") + dimStyle.Render(k.help+"  ")
	}
	return footerStyle.Render(out)
}
