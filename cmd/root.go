package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/insider-sync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "insider-sync",
	Short: "SEC Form 4 insider transaction pipeline",
	Long:  "Walks SEC EDGAR filing indexes for watched tickers, extracts insider transactions from Form 4 ownership documents, and stores the cleaned dataset for export and serving.",
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
