package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "replaybench",
	Short: "Deterministic replay and execution engine for trading-agent benchmarks",
	Long: `Replaybench replays historical candle datasets against recorded agent
decisions under strict anti-look-ahead gating.

It provides tools for:
  - Replaying JSONL decision logs over US, A-share, crypto and forex datasets
  - Market-correct order validation (lot sizes, sessions, T+1 settlement)
  - Append-only trade journals (JSONL, CSV or SQLite)
  - Risk and return metrics computed from the equity curve`,
}

var debug bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func newLogger() (*zap.Logger, error) {
	if debug {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		return log, nil
	}
	log, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
