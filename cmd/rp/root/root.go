package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"routinepet/internal/storage"
	"routinepet/internal/ui"
)

const Version = "0.1.0"

type globalFlags struct {
	configPath string
	dbPath     string
	userID     int64
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "rp",
	Short:         "Routinepet: habit tracker with a pet that levels up",
	Long:          "Routinepet tracks daily routines, rewards completions with pet XP, and serves weekly stats and coaching over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", os.Getenv("ROUTINEPET_CONFIG"), "YAML config file")
	pf.StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides config)")
	pf.Int64VarP(&flags.userID, "user", "u", storage.DefaultUserID, "User ID")

	rootCmd.AddCommand(
		newServeCmd(),
		newCompleteCmd(),
		newStreakCmd(),
		newStatsCmd(),
		newPetCmd(),
		newRoutineCmd(),
		newLogsCmd(),
		newCoachCmd(),
		newRecommendCmd(),
		newDashboardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
