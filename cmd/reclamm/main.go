package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "reclamm",
		Short:        "Readjusting concentrated liquidity pool simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a pool and persist its state",
		RunE:  runInit,
	}
	addSimulateFlags(initCmd)
	initCmd.Flags().String("balance-a", "", "initial balance of token A (token units)")
	initCmd.Flags().String("balance-b", "", "initial balance of token B (token units)")
	initCmd.Flags().String("min-price", "", "minimum price of A in B")
	initCmd.Flags().String("max-price", "", "maximum price of A in B")
	initCmd.Flags().String("target-price", "", "initial price of A in B")
	initCmd.Flags().String("swap-fee", "0.003", "swap fee percentage")
	initCmd.Flags().String("token-a-symbol", "A", "token A symbol")
	initCmd.Flags().Uint("token-a-decimals", 18, "token A decimals")
	initCmd.Flags().String("token-b-symbol", "B", "token B symbol")
	initCmd.Flags().Uint("token-b-decimals", 18, "token B decimals")
	root.AddCommand(initCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against persisted pool state",
		RunE:  runQuote,
	}
	addSimulateFlags(quoteCmd)
	quoteCmd.Flags().String("kind", "exact_in", "swap kind (exact_in, exact_out)")
	quoteCmd.Flags().Int("token-in", 0, "index of the token sent to the pool (0 or 1)")
	quoteCmd.Flags().String("amount", "", "given amount (token units)")
	quoteCmd.Flags().Bool("commit", false, "persist the post-swap state")
	root.AddCommand(quoteCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a JSONL operation log against a simulated pool",
		RunE:  runReplay,
	}
	replayCmd.Flags().String("in", "", "input operations JSONL")
	replayCmd.Flags().String("out", "./data/results.jsonl", "output results JSONL")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	replayCmd.Flags().String("state-file", "", "optional local state file")
	replayCmd.Flags().String("name", "default", "pool name used for persisted state")
	replayCmd.Flags().Int("batch-size", 500, "results per write batch")
	replayCmd.Flags().String("swap-fee", "0.003", "swap fee percentage for a new pool")
	replayCmd.Flags().String("token-a-symbol", "A", "token A symbol")
	replayCmd.Flags().Uint("token-a-decimals", 18, "token A decimals")
	replayCmd.Flags().String("token-b-symbol", "B", "token B symbol")
	replayCmd.Flags().Uint("token-b-decimals", 18, "token B decimals")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(replayCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Evaluate persisted pool state against on-chain token balances",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().String("rpc", "", "RPC URL")
	snapshotCmd.Flags().String("token-a", "", "token A address")
	snapshotCmd.Flags().String("token-b", "", "token B address")
	snapshotCmd.Flags().String("holder", "", "address holding the pool balances")
	snapshotCmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	snapshotCmd.Flags().String("state-file", "", "optional local state file")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	snapshotCmd.Flags().String("name", "default", "pool name used for persisted state")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimulateFlags(cmd *cobra.Command) {
	cmd.Flags().String("state-file", "", "local state file")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("name", "default", "pool name used for persisted state")
	cmd.Flags().String("now", "", "evaluation time (unix seconds or RFC3339), defaults to current time")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
