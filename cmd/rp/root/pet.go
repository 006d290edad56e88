package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"routinepet/internal/engine"
	"routinepet/internal/ui"
)

func newPetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pet",
		Short: "Show the pet's level and XP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			pet, err := a.svc.Pet(ctx, flags.userID)
			if err != nil {
				return err
			}
			printPet(cmd, pet)
			return nil
		},
	}
	cmd.AddCommand(newPetSetCmd())
	return cmd
}

func newPetSetCmd() *cobra.Command {
	var level, xp, threshold int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Overwrite pet fields (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch engine.PetPatch
			if cmd.Flags().Changed("level") {
				patch.Level = &level
			}
			if cmd.Flags().Changed("xp") {
				patch.XP = &xp
			}
			if cmd.Flags().Changed("threshold") {
				patch.NextLevelThreshold = &threshold
			}
			if patch.Level == nil && patch.XP == nil && patch.NextLevelThreshold == nil {
				return errors.New("nothing to set: pass --level, --xp or --threshold")
			}

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			pet, err := a.svc.PatchPet(ctx, flags.userID, patch)
			if err != nil {
				return err
			}
			printPet(cmd, pet)
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "Level (>= 1)")
	cmd.Flags().IntVar(&xp, "xp", 0, "XP (>= 0)")
	cmd.Flags().IntVar(&threshold, "threshold", 100, "Next level threshold (>= 1)")
	return cmd
}

func printPet(cmd *cobra.Command, pet *engine.PetState) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Heading(ui.IconPet, fmt.Sprintf("Pet of user %d", flags.userID)))
	fmt.Fprintln(out, ui.LabelValue("Level", pet.Level))
	fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d/%d %s", pet.XP, pet.NextLevelThreshold, ui.ProgressBar(pet.XP, pet.NextLevelThreshold, 20))))
}
