package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routinepet/internal/engine"
	"routinepet/internal/storage"
)

func newTestModel(t *testing.T) (dashboardModel, *engine.Service) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := engine.NewService(db, engine.WithClock(engine.NewFakeClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))))
	_, err = svc.CreateRoutine(ctx, engine.RoutineInput{UserID: 1, Title: "Stretch", Time: "07:30", Days: []string{"Mon", "Fri"}})
	require.NoError(t, err)
	return newDashboardModel(ctx, svc, 1), svc
}

// run executes a command and feeds its message back into the model.
func run(t *testing.T, m dashboardModel, cmd tea.Cmd) dashboardModel {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(dashboardModel)
}

func key(m dashboardModel, k string) (dashboardModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(dashboardModel), cmd
}

func TestDashboardLoadsAndRenders(t *testing.T) {
	m, _ := newTestModel(t)
	m = run(t, m, m.Init())
	require.NoError(t, m.err)

	view := m.View()
	assert.Contains(t, view, "Level 1")
	assert.Contains(t, view, "Stretch")
	assert.Contains(t, view, "next Fri 07:30")

	m, _ = key(m, "tab")
	m, _ = key(m, "tab")
	assert.Equal(t, panelStats, m.panel)
	assert.Contains(t, m.View(), "Insights")
}

func TestDashboardTogglesRoutine(t *testing.T) {
	m, svc := newTestModel(t)
	m = run(t, m, m.Init())

	m, cmd := key(m, "space")
	m = run(t, m, cmd)
	assert.Contains(t, m.lastLog, "is now off")

	list, err := svc.ListRoutines(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, list[0].Active)
}

func TestDashboardNudgesPet(t *testing.T) {
	m, svc := newTestModel(t)
	m = run(t, m, m.Init())

	m, cmd := key(m, "+")
	m = run(t, m, cmd)
	m, cmd = key(m, "]")
	m = run(t, m, cmd)

	pet, err := svc.Pet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, pet.Level)
	assert.Equal(t, 10, pet.XP)

	m.pet = pet
	m.pet.Level = 1
	_, cmd = key(m, "[")
	assert.Nil(t, cmd)
}
