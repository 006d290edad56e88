package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"routinepet/internal/storage"
	"routinepet/internal/ui"
)

func newLogsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent completion logs across users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			logs, err := a.svc.RecentLogs(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No logs yet."))
				return nil
			}
			for _, l := range logs {
				note := ""
				if l.Note != nil {
					note = ui.Muted.Render("  " + *l.Note)
				}
				fmt.Fprintf(out, "#%-4d user %-3d routine %-3d %s  %s → %s%s\n",
					l.ID, l.UserID, l.RoutineID, ui.StatusText(string(l.Status)), l.StartedAt, l.EndedAt, note)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", storage.DefaultLogListLimit, "Max rows (1-500)")
	return cmd
}
