package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reclamm/internal/config"
	"reclamm/internal/replay"
	"reclamm/internal/storage"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" && cfg.PGDSN == "" {
		return fmt.Errorf("out or pg-dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks storage.Multi
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}

	if cfg.StateFile != "" && cfg.PGDSN != "" {
		return fmt.Errorf("state-file and pg-dsn are mutually exclusive")
	}

	var stateStore storage.StateStore
	if cfg.StateFile != "" || cfg.PGDSN != "" {
		store, db, closeStore, err := openStateStore(ctx, cfg.StateFile, cfg.PGDSN, cfg.Name)
		if err != nil {
			return err
		}
		defer closeStore()

		stateStore = store
		if db != nil {
			sinks = append(sinks, &storage.DBStorage{Store: db, Name: cfg.Name})
		}
	}

	runner := replay.NewRunner(replay.Config{
		BatchSize:  cfg.BatchSize,
		StateStore: stateStore,
		Tokens:     cfg.Tokens,
		SwapFee:    cfg.SwapFee,
		Pool:       cfg.Pool,
	}, sinks, logger)

	logger.Info("replay start",
		zap.String("input", cfg.Input),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("state_file", cfg.StateFile),
		zap.String("name", cfg.Name),
		zap.Int("batch_size", cfg.BatchSize),
	)

	_, err = runner.Run(ctx, cfg.Input)
	return err
}
