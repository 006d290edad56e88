package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"routinepet/internal/engine"
	"routinepet/internal/ui"
)

const cliTimestampLayout = "2006-01-02T15:04:05"

func newCompleteCmd() *cobra.Command {
	var status string
	var started string
	var ended string
	var minutes int
	var note string

	cmd := &cobra.Command{
		Use:   "complete <routine_id>",
		Short: "Log a routine attempt and reward the pet",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("routine_id is required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("routine_id must be an integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			routineID, _ := strconv.ParseInt(args[0], 10, 64)

			st := engine.ParseStatus(status)
			if !st.IsValid() {
				return fmt.Errorf("invalid status %q (done|partial|late|miss)", status)
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			now := a.svc.Clock().Now()
			if ended == "" {
				ended = now.Format(cliTimestampLayout)
			}
			if started == "" {
				started = now.Add(-time.Duration(minutes) * time.Minute).Format(cliTimestampLayout)
			}
			var notePtr *string
			if note != "" {
				notePtr = &note
			}

			res, err := a.svc.CompleteRoutine(ctx, engine.CompleteInput{
				UserID:    flags.userID,
				RoutineID: routineID,
				Status:    st,
				StartedAt: started,
				EndedAt:   ended,
				Note:      notePtr,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s routine %d → %s\n", ui.StatusText(string(st)), routineID, ui.Gold.Render(fmt.Sprintf("+%d XP", res.XPGain)))
			if res.LeveledUp {
				fmt.Fprintln(out, ui.BadgeLevelUp)
			}
			fmt.Fprintln(out, ui.LabelValue("Pet", fmt.Sprintf("level %d, xp %d/%d %s",
				res.Pet.Level, res.Pet.XP, res.Pet.NextLevelThreshold, ui.ProgressBar(res.Pet.XP, res.Pet.NextLevelThreshold, 20))))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d", ui.IconFire, res.Streak)))
			fmt.Fprintln(out, ui.Muted.Render(ui.IconCoach+" "+res.Hint))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "done", "Status (done|partial|late|miss)")
	cmd.Flags().StringVar(&started, "start", "", "Start timestamp (default: now minus --minutes)")
	cmd.Flags().StringVar(&ended, "end", "", "End timestamp (default: now)")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 20, "Duration used when --start is omitted")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Free-text note")
	return cmd
}

func newStreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the current done streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := a.svc.Streak(ctx, flags.userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue(ui.IconFire+" Streak", n))
			return nil
		},
	}
}
