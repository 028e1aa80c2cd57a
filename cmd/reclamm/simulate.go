package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reclamm/internal/config"
	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/pool"
	"reclamm/internal/vault"
)

type quoteOutput struct {
	Kind      string             `json:"kind"`
	TokenIn   string             `json:"token_in"`
	TokenOut  string             `json:"token_out"`
	AmountIn  string             `json:"amount_in"`
	AmountOut string             `json:"amount_out"`
	Fee       string             `json:"fee"`
	Before    model.PoolSnapshot `json:"before"`
	After     model.PoolSnapshot `json:"after"`
	Committed bool               `json:"committed"`
}

func loadSimulate(cmd *cobra.Command) (config.SimulateConfig, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return cfg, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	if cfg.Now == 0 {
		cfg.Now = uint64(time.Now().Unix())
	}
	return cfg, logger, nil
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSimulate(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.MinPrice == nil || cfg.MaxPrice == nil || cfg.TargetPrice == nil {
		return fmt.Errorf("min-price, max-price and target-price are required")
	}
	if cfg.BalanceA == "" || cfg.BalanceB == "" {
		return fmt.Errorf("balance-a and balance-b are required")
	}

	var amounts model.Balances
	for i, s := range []string{cfg.BalanceA, cfg.BalanceB} {
		amount, err := fixedpoint.ParseUnits(s, cfg.Tokens[i].Decimals)
		if err != nil {
			return fmt.Errorf("balance of %s: %w", cfg.Tokens[i].Symbol, err)
		}
		amounts[i] = amount
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateStore, _, closeStore, err := openStateStore(ctx, cfg.StateFile, cfg.PGDSN, cfg.Name)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, ok, err := stateStore.Load(ctx); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("pool %q already has persisted state", cfg.Name)
	}

	v, err := vault.New(cfg.Tokens, cfg.Pool, cfg.SwapFee, logger)
	if err != nil {
		return err
	}
	bpt, err := v.Initialize(amounts, cfg.MinPrice, cfg.MaxPrice, cfg.TargetPrice, cfg.Now)
	if err != nil {
		return err
	}
	if err := stateStore.Save(ctx, v.State()); err != nil {
		return err
	}

	snapshot, err := v.Snapshot(cfg.Now)
	if err != nil {
		return err
	}
	logger.Info("pool initialized",
		zap.String("name", cfg.Name),
		zap.String("bpt", fixedpoint.Format(bpt)),
		zap.String("spot_price", fixedpoint.Format(snapshot.SpotPrice)),
		zap.String("centeredness", fixedpoint.Format(snapshot.Centeredness)),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)
	return writeJSON(cmd.OutOrStdout(), snapshot)
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSimulate(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	commit, _ := cmd.Flags().GetBool("commit")
	if cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	kind, err := pool.ParseSwapKind(cfg.Kind)
	if err != nil {
		return err
	}

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
	if !ok {
		return fmt.Errorf("pool %q has no persisted state", cfg.Name)
	}
	v, err := vault.Restore(cfg.Pool, state, logger)
	if err != nil {
		return err
	}

	tokens := v.Tokens()
	tokenIn, tokenOut := cfg.TokenIn, model.Other(cfg.TokenIn)
	givenToken := tokenIn
	if kind == pool.ExactOut {
		givenToken = tokenOut
	}
	amount, err := fixedpoint.ParseUnits(cfg.Amount, tokens[givenToken].Decimals)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	before, err := v.Snapshot(cfg.Now)
	if err != nil {
		return err
	}
	res, err := v.Swap(vault.SwapParams{Kind: kind, TokenIn: tokenIn, TokenOut: tokenOut, AmountGiven: amount}, cfg.Now)
	if err != nil {
		return err
	}
	after, err := v.Snapshot(cfg.Now)
	if err != nil {
		return err
	}

	if commit {
		if err := stateStore.Save(ctx, v.State()); err != nil {
			return err
		}
	}

	logger.Debug("quote",
		zap.String("name", cfg.Name),
		zap.Stringer("kind", kind),
		zap.Uint64("now", cfg.Now),
		zap.Bool("commit", commit),
	)
	return writeJSON(cmd.OutOrStdout(), quoteOutput{
		Kind:      kind.String(),
		TokenIn:   tokens[tokenIn].Symbol,
		TokenOut:  tokens[tokenOut].Symbol,
		AmountIn:  fixedpoint.FormatUnits(res.AmountIn, tokens[tokenIn].Decimals),
		AmountOut: fixedpoint.FormatUnits(res.AmountOut, tokens[tokenOut].Decimals),
		Fee:       formatFee(res.Fee, tokens[tokenIn].Decimals),
		Before:    before,
		After:     after,
		Committed: commit,
	})
}

func formatFee(fee *uint256.Int, decimals uint8) string {
	if fee == nil {
		return "0"
	}
	return fixedpoint.FormatUnits(fee, decimals)
}
