package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"routinepet/internal/engine"
	"routinepet/internal/ui"
)

type panel int

const (
	panelRoutines panel = iota
	panelLogs
	panelStats
	panelCount
)

func (p panel) title() string {
	switch p {
	case panelRoutines:
		return "Routines"
	case panelLogs:
		return "Recent logs"
	default:
		return "This week"
	}
}

const (
	dashboardLogLimit = 20
	xpNudge           = 10
)

type dashboardModel struct {
	ctx    context.Context
	svc    *engine.Service
	userID int64

	width  int
	height int

	pet      *engine.PetState
	routines []engine.Routine
	logs     []engine.LogEntry
	stats    *engine.WeeklyStats

	panel    panel
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	pet      *engine.PetState
	routines []engine.Routine
	logs     []engine.LogEntry
	stats    *engine.WeeklyStats
	err      error
}

type actionMsg struct {
	text string
	err  error
}

func newDashboardModel(ctx context.Context, svc *engine.Service, userID int64) dashboardModel {
	return dashboardModel{
		ctx:     ctx,
		svc:     svc,
		userID:  userID,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m dashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		pet, err := m.svc.Pet(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		routines, err := m.svc.ListRoutines(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		logs, err := m.svc.RecentLogs(m.ctx, dashboardLogLimit)
		if err != nil {
			return loadedMsg{err: err}
		}
		stats, err := m.svc.WeeklyStats(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{pet: pet, routines: routines, logs: logs, stats: stats}
	}
}

func (m dashboardModel) toggleCmd(rt engine.Routine) tea.Cmd {
	return func() tea.Msg {
		active := !rt.Active
		updated, err := m.svc.UpdateRoutine(m.ctx, rt.ID, engine.RoutinePatch{Active: &active})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("Routine %d %q is now %s.", updated.ID, updated.Title, onOff(updated.Active))}
	}
}

func (m dashboardModel) patchCmd(patch engine.PetPatch) tea.Cmd {
	return func() tea.Msg {
		pet, err := m.svc.PatchPet(m.ctx, m.userID, patch)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("Pet set to level %d, xp %d/%d.", pet.Level, pet.XP, pet.NextLevelThreshold)}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.pet = msg.pet
		m.routines = msg.routines
		m.logs = msg.logs
		m.stats = msg.stats
		m.selected = clamp(m.selected, m.rowCount())
		m.lastLog = fmt.Sprintf("Refreshed at %s.", m.svc.Clock().Now().Format("15:04:05"))
		return m, nil
	case actionMsg:
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = msg.text
		return m, m.loadCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.loading = true
		m.lastLog = "Refreshing…"
		return m, m.loadCmd()
	case "tab", "right", "l":
		m.panel = (m.panel + 1) % panelCount
		m.selected = 0
		return m, nil
	case "shift+tab", "left", "h":
		m.panel = (m.panel + panelCount - 1) % panelCount
		m.selected = 0
		return m, nil
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < m.rowCount()-1 {
			m.selected++
		}
		return m, nil
	case " ", "enter":
		if m.panel != panelRoutines || m.selected >= len(m.routines) {
			return m, nil
		}
		rt := m.routines[m.selected]
		m.lastLog = fmt.Sprintf("Toggling %d…", rt.ID)
		return m, m.toggleCmd(rt)
	case "+", "=":
		return m.nudgeXP(xpNudge)
	case "-", "_":
		return m.nudgeXP(-xpNudge)
	case "]":
		return m.nudgeLevel(1)
	case "[":
		return m.nudgeLevel(-1)
	}
	return m, nil
}

// nudgeXP overwrites xp directly; it does not roll over into a new level.
func (m dashboardModel) nudgeXP(delta int) (tea.Model, tea.Cmd) {
	if m.pet == nil {
		return m, nil
	}
	xp := m.pet.XP + delta
	if xp < 0 {
		xp = 0
	}
	return m, m.patchCmd(engine.PetPatch{XP: &xp})
}

func (m dashboardModel) nudgeLevel(delta int) (tea.Model, tea.Cmd) {
	if m.pet == nil {
		return m, nil
	}
	level := m.pet.Level + delta
	if level < 1 {
		m.lastLog = "Level cannot go below 1."
		return m, nil
	}
	return m, m.patchCmd(engine.PetPatch{Level: &level})
}

func (m dashboardModel) rowCount() int {
	switch m.panel {
	case panelRoutines:
		return len(m.routines)
	case panelLogs:
		return len(m.logs)
	default:
		return 0
	}
}

func (m dashboardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	var tabs []string
	for p := panel(0); p < panelCount; p++ {
		label := " " + p.title() + " "
		if p == m.panel {
			tabs = append(tabs, ui.SelectedRow.Render(label))
		} else {
			tabs = append(tabs, ui.Muted.Render(label))
		}
	}

	var body string
	switch {
	case m.loading && m.pet == nil:
		body = "Loading…"
	case m.panel == panelRoutines:
		body = m.renderRoutines()
	case m.panel == panelLogs:
		body = m.renderLogs()
	default:
		body = m.renderStats()
	}

	style := ui.ActivePanel
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		strings.Join(tabs, " "),
		style.Render(body),
		ui.Muted.Render("tab: panel  ↑/↓: move  space: toggle routine  +/-: xp  [/]: level  r: refresh  q: quit"),
		m.lastLog,
	)
}

func (m dashboardModel) renderHeader() string {
	if m.pet == nil {
		return ui.Heading(ui.IconPet, "Routinepet: loading…")
	}
	bar := ui.ProgressBar(m.pet.XP, m.pet.NextLevelThreshold, 30)
	return fmt.Sprintf("%s | User %d | Level %d | XP %d/%d %s",
		ui.Heading(ui.IconPet, "Routinepet"), m.userID, m.pet.Level, m.pet.XP, m.pet.NextLevelThreshold, bar)
}

func (m dashboardModel) renderRoutines() string {
	if len(m.routines) == 0 {
		return "(no routines yet; add one with `rp routine add`)"
	}
	now := m.svc.Clock().Now()
	var out []string
	for i, rt := range m.routines {
		next := "-"
		if at, ok := engine.NextOccurrence(rt, now); ok {
			next = at.Format("Mon 15:04")
		}
		line := fmt.Sprintf("%3d  %-24s %s  %-11s %-6s %-4s next %s",
			rt.ID, truncate(rt.Title, 24), rt.Time, strings.Join(rt.Days, ","), rt.Difficulty, onOff(rt.Active), next)
		out = append(out, m.row(i, line))
	}
	return strings.Join(out, "\n")
}

func (m dashboardModel) renderLogs() string {
	if len(m.logs) == 0 {
		return "(no completions logged)"
	}
	var out []string
	for i, l := range m.logs {
		note := ""
		if l.Note != nil && *l.Note != "" {
			note = "  " + truncate(*l.Note, 30)
		}
		line := fmt.Sprintf("%4d  user %-3d routine %-3d %-8s %s → %s%s",
			l.ID, l.UserID, l.RoutineID, l.Status, l.StartedAt, l.EndedAt, note)
		out = append(out, m.row(i, line))
	}
	return strings.Join(out, "\n")
}

func (m dashboardModel) renderStats() string {
	if m.stats == nil {
		return "Loading…"
	}
	s := m.stats
	out := []string{
		ui.LabelValue("Completion", ui.Percent(s.CompletionRate)+" "+ui.ProgressBar(int(s.CompletionRate*100), 100, 20)),
		ui.LabelValue("Streak", fmt.Sprintf("%s %d", ui.IconFire, s.Streak)),
		ui.LabelValue("Best slots", strings.Join(s.BestSlots, ", ")),
		"",
		ui.H2.Render("Insights"),
	}
	for _, line := range s.Insights {
		out = append(out, "- "+line)
	}
	out = append(out, "", ui.H2.Render("Tips"))
	for _, line := range s.Tips {
		out = append(out, "- "+line)
	}
	return strings.Join(out, "\n")
}

func (m dashboardModel) row(i int, line string) string {
	if i == m.selected {
		return ui.SelectedRow.Render("> " + line)
	}
	return "  " + line
}

func onOff(active bool) string {
	if active {
		return "on"
	}
	return "off"
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
