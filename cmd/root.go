package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TuckerBrewer12/ScanScorecards/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scorecards",
	Short: "Digitize paper golf scorecards",
	Long:  "Reads photographed or scanned golf scorecards with a vision model, validates the extracted numbers against the rules of the game, and stores rounds with per-field confidence scores.",
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
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
