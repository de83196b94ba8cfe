package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pindrop/pindrop/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pindrop",
	Short: "Turn a Notion database of places into map locations",
	Long:  "Reads rows from a Notion database, resolves coordinates directly or by geocoding addresses, and serves or exports the resulting map locations.",
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
