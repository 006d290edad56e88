package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"routinepet/internal/coach"
	"routinepet/internal/ui"
)

func newCoachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coach <message>",
		Short: "Ask the coach (local Ollama model)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("message is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			reply := a.coach.Chat(ctx, flags.userID, strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), ui.IconCoach+" "+reply)
			return nil
		},
	}
}

func newRecommendCmd() *cobra.Command {
	var goals, slots []string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest routine plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			plans := a.coach.Recommend(ctx, coach.RecommendRequest{
				UserID:      flags.userID,
				Goals:       goals,
				PreferSlots: slots,
			})
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Suggested routines"))
			for _, p := range plans {
				fmt.Fprintf(out, "- %s  %s %s, %d min, %s\n", ui.H2.Render(p.Title), strings.Join(p.Days, ","), p.Time, p.DurationMin, ui.DifficultyText(p.Difficulty))
				if p.Reason != "" {
					fmt.Fprintln(out, "  "+ui.Muted.Render(p.Reason))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&goals, "goal", "g", nil, "Goal (repeatable)")
	cmd.Flags().StringSliceVarP(&slots, "slot", "s", nil, "Preferred slot: morning|noon|evening|night (repeatable)")
	return cmd
}
