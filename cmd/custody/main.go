package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "custody",
		Short: "Quorum wallet, timelock and managed ledger pipeline",
		Long: `Custody deploys a quorum wallet, a delay controller and a managed ledger
into an in-memory VM and drives governance operations through them.

The deployment is read from the environment:
  OWNERS, THRESHOLD          quorum wallet owners and approval threshold
  DELAY, ADMIN               timelock delay and administrator
  OPERATOR, TOKEN_NAME,
  TOKEN_SYMBOL, INITIAL_SUPPLY  ledger operator and token
  LOG_LEVEL                  log level (default INFO)

Commands:
  custody simulate           Mint through the full approval pipeline
  custody events <file>      Print an exported event stream`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newEventsCmd())

	return rootCmd.ExecuteContext(context.Background())
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	cfg.Level.SetLevel(lvl)

	return cfg.Build()
}
