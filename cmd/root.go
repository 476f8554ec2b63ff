package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmansmann0/capsim-ml/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "capsim-cli",
	Short: "Extract product and segment data from Capsim Courier reports",
	Long: "Parses pasted Capstone Courier report text into per-product, per-segment records, " +
		"accumulates them across rounds and exports CSV, XLSX or JSON.",
	SilenceUsage: true,
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
