package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/karad-smartcity/cityanalytics/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cityanalytics",
	Short: "Karad smart city analytics dashboard",
	Long:  "Loads the ward-level traffic, public service, business and social datasets, serves the dashboard views as JSON, runs the accident risk simulator and produces the city PDF report.",
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
