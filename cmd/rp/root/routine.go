package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"routinepet/internal/engine"
	"routinepet/internal/ui"
)

func newRoutineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "routine",
		Aliases: []string{"routines", "r"},
		Short:   "Manage routines",
	}
	cmd.AddCommand(
		newRoutineAddCmd(),
		newRoutineListCmd(),
		newRoutineUpdateCmd(),
		newRoutineRemoveCmd(),
	)
	return cmd
}

func idArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("id is required")
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return errors.New("id must be an integer")
	}
	return nil
}

func newRoutineAddCmd() *cobra.Command {
	var at, days, diff, icon string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a routine",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			difficulty, err := engine.ParseDifficulty(diff)
			if err != nil {
				return err
			}
			dayList, err := engine.ParseDays(days)
			if err != nil {
				return err
			}
			active := !inactive

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rt, err := a.svc.CreateRoutine(ctx, engine.RoutineInput{
				UserID:     flags.userID,
				Title:      args[0],
				Time:       at,
				Days:       dayList,
				Difficulty: difficulty,
				Active:     &active,
				IconKey:    icon,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", ui.Good.Render(ui.IconPlus+" Added"), rt.ID, rt.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&at, "time", "t", "07:00", "Time of day (HH:MM)")
	cmd.Flags().StringVar(&days, "days", "Mon,Tue,Wed,Thu,Fri", "Comma separated weekdays")
	cmd.Flags().StringVarP(&diff, "diff", "d", "mid", "Difficulty (easy|mid|hard)")
	cmd.Flags().StringVar(&icon, "icon", engine.DefaultIconKey, "Icon key")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the routine switched off")
	return cmd
}

func newRoutineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List routines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := a.svc.ListRoutines(ctx, flags.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No routines yet. Try: rp routine add \"Morning stretch\" -t 07:30"))
				return nil
			}
			now := a.svc.Clock().Now()
			for _, rt := range list {
				next := ui.Muted.Render("-")
				if at, ok := engine.NextOccurrence(rt, now); ok {
					next = at.Format("Mon Jan 2 15:04")
				}
				fmt.Fprintf(out, "#%-3d %-24s %s  %-20s %s %s  next: %s\n",
					rt.ID, rt.Title, rt.Time, strings.Join(rt.Days, ","), ui.DifficultyText(string(rt.Difficulty)), ui.ActiveText(rt.Active), next)
			}
			return nil
		},
	}
}

func newRoutineUpdateCmd() *cobra.Command {
	var title, at, days, diff, icon string
	var active bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change routine fields",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := strconv.ParseInt(args[0], 10, 64)

			var patch engine.RoutinePatch
			f := cmd.Flags()
			if f.Changed("title") {
				patch.Title = &title
			}
			if f.Changed("time") {
				patch.Time = &at
			}
			if f.Changed("days") {
				list, err := engine.ParseDays(days)
				if err != nil {
					return err
				}
				patch.Days = &list
			}
			if f.Changed("diff") {
				d, err := engine.ParseDifficulty(diff)
				if err != nil {
					return err
				}
				patch.Difficulty = &d
			}
			if f.Changed("icon") {
				patch.IconKey = &icon
			}
			if f.Changed("active") {
				patch.Active = &active
			}

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rt, err := a.svc.UpdateRoutine(ctx, id, patch)
			if errors.Is(err, engine.ErrNotFound) {
				return fmt.Errorf("routine %d not found", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s (%s)\n", ui.Good.Render(ui.IconDone+" Updated"), rt.ID, rt.Title, ui.ActiveText(rt.Active))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVarP(&at, "time", "t", "", "Time of day (HH:MM)")
	cmd.Flags().StringVar(&days, "days", "", "Comma separated weekdays")
	cmd.Flags().StringVarP(&diff, "diff", "d", "", "Difficulty (easy|mid|hard)")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon key")
	cmd.Flags().BoolVar(&active, "active", true, "Switch the routine on or off")
	return cmd
}

func newRoutineRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a routine",
		Args:    idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := strconv.ParseInt(args[0], 10, 64)

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.svc.DeleteRoutine(ctx, id); err != nil {
				if errors.Is(err, engine.ErrNotFound) {
					return fmt.Errorf("routine %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", ui.Warn.Render("Deleted"), id)
			return nil
		},
	}
}
