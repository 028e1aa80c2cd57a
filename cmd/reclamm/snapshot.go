package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reclamm/internal/chain"
	"reclamm/internal/config"
	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/vault"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	var tokens [2]common.Address
	for i, s := range []string{cfg.TokenA, cfg.TokenB} {
		if !common.IsHexAddress(s) {
			return fmt.Errorf("invalid token address %q", s)
		}
		tokens[i] = common.HexToAddress(s)
	}
	if !common.IsHexAddress(cfg.Holder) {
		return fmt.Errorf("invalid holder address %q", cfg.Holder)
	}
	holder := common.HexToAddress(cfg.Holder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateStore, _, closeStore, err := openStateStore(ctx, cfg.StateFile, cfg.PGDSN, cfg.Name)
	if err != nil {
		return err
	}
	defer closeStore()

	state, ok, err := stateStore.Load(ctx)
	if err != nil {
		return err
	}
	if !ok || !state.Initialized {
		return fmt.Errorf("pool %q has no initialized state", cfg.Name)
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var ref chain.BlockRef
	err = chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		resolved, err := chainClient.BlockAt(ctx, cfg.Block)
		if err != nil {
			return err
		}
		ref = resolved
		return nil
	})
	if err != nil {
		return fmt.Errorf("resolve block: %w", err)
	}
	block, now := ref.Number, ref.Timestamp

	cache := chain.NewTokenMetaCache()
	for i, token := range tokens {
		var meta model.TokenMeta
		err := chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
			fetched, err := cache.Fetch(ctx, chainClient, token, logger)
			if err != nil {
				return err
			}
			meta = fetched
			return nil
		})
		if err != nil {
			return fmt.Errorf("token meta %s: %w", token.Hex(), err)
		}
		meta.Rate = state.Tokens[i].Rate
		state.Tokens[i] = meta
	}

	var method string
	err = chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		balances, m, err := chain.FetchBalances(ctx, chainClient, tokens, holder, block)
		if err != nil {
			return err
		}
		state.Balances, method = balances, m
		return nil
	})
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}

	v, err := vault.Restore(cfg.Pool, state, logger)
	if err != nil {
		return err
	}
	snapshot, err := v.Snapshot(now)
	if err != nil {
		return err
	}

	logger.Info("snapshot",
		zap.String("name", cfg.Name),
		zap.Uint64("block", block),
		zap.Uint64("ts", now),
		zap.String("balance_method", method),
		zap.String("spot_price", fixedpoint.Format(snapshot.SpotPrice)),
		zap.Bool("within_target_range", snapshot.WithinTargetRange),
	)
	return writeJSON(cmd.OutOrStdout(), snapshot)
}
