package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/kobo-sync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kobo-sync",
	Short: "Load Kobo survey exports into PostgreSQL",
	Long:  "Downloads the KoboToolbox CSV export, normalizes columns and values, and replaces the product_data table with the result. Runs sync when no subcommand is given.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd, syncOptions{})
	},
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
