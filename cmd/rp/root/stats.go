package root

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"routinepet/internal/engine"
	"routinepet/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show this week's stats, insights and tips",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ws, err := a.svc.WeeklyStats(ctx, flags.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ws)
			}

			weekStart := engine.WeekStart(a.svc.Clock().Now()).Format("2006-01-02")
			fmt.Fprintln(out, ui.Heading(ui.IconChart, "Week of "+weekStart))
			fmt.Fprintln(out, ui.LabelValue("Completion", ui.Percent(ws.CompletionRate)))
			fmt.Fprintln(out, ui.LabelValue("Streak", ws.Streak))
			slots := strings.Join(ws.BestSlots, ", ")
			if slots == "" {
				slots = ui.Muted.Render("(none yet)")
			}
			fmt.Fprintln(out, ui.LabelValue("Best slots", slots))
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.H2.Render("Insights"))
			for _, s := range ws.Insights {
				fmt.Fprintln(out, "- "+s)
			}
			fmt.Fprintln(out, ui.H2.Render("Tips"))
			for _, s := range ws.Tips {
				fmt.Fprintln(out, "- "+s)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
