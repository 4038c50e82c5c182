package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchradar/launchradar/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "launchradar",
	Short: "Startup discovery and viability analysis",
	Long:  "Scrapes newly launched products from public listing sites and runs each through a reasoning-model viability analysis with cached, schema-validated results.",
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
