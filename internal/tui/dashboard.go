package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"routinepet/internal/engine"
)

// RunDashboard opens the operator dashboard for one user.
func RunDashboard(ctx context.Context, svc *engine.Service, userID int64, out io.Writer) error {
	m := newDashboardModel(ctx, svc, userID)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
