package root

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"routinepet/internal/tui"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"board"},
		Short:   "Open the TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			// The TUI owns the terminal; logs still reach log.file when set.
			a, cleanup, err := openAppWithConsole(ctx, io.Discard)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunDashboard(ctx, a.svc, flags.userID, cmd.OutOrStdout())
		},
	}

	return cmd
}
