package config

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/pflag"

	"reclamm/internal/model"
	"reclamm/internal/pool"
)

// SimulateConfig holds configuration for the init and quote commands.
type SimulateConfig struct {
	StateFile string
	PGDSN     string
	Name      string

	Tokens   [2]model.TokenMeta
	SwapFee  *uint256.Int
	BalanceA string
	BalanceB string

	MinPrice    *uint256.Int
	MaxPrice    *uint256.Int
	TargetPrice *uint256.Int

	Kind    string
	TokenIn int
	Amount  string
	Now     uint64

	Pool     pool.PoolConfig
	LogLevel string
}

// LoadSimulate merges config file, environment variables, and flags into SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	defaults := tokenDefaults()
	defaults["kind"] = model.SwapExactIn

	v, err := newViper(cfgFile, flags, defaults)
	if err != nil {
		return SimulateConfig{}, err
	}

	cfg := SimulateConfig{
		StateFile: v.GetString("state-file"),
		PGDSN:     v.GetString("pg-dsn"),
		Name:      v.GetString("name"),
		BalanceA:  v.GetString("balance-a"),
		BalanceB:  v.GetString("balance-b"),
		Kind:      v.GetString("kind"),
		TokenIn:   v.GetInt("token-in"),
		Amount:    v.GetString("amount"),
		LogLevel:  v.GetString("log-level"),
	}
	if cfg.TokenIn != model.TokenA && cfg.TokenIn != model.TokenB {
		return SimulateConfig{}, fmt.Errorf("token-in must be 0 or 1, got %d", cfg.TokenIn)
	}
	if cfg.Now, err = ParseTimestamp(v.GetString("now")); err != nil {
		return SimulateConfig{}, fmt.Errorf("parse now: %w", err)
	}
	if cfg.Tokens, err = loadTokens(v); err != nil {
		return SimulateConfig{}, err
	}
	if cfg.SwapFee, err = parseDecimal(v, "swap-fee"); err != nil {
		return SimulateConfig{}, err
	}
	for key, dst := range map[string]**uint256.Int{
		"min-price":    &cfg.MinPrice,
		"max-price":    &cfg.MaxPrice,
		"target-price": &cfg.TargetPrice,
	} {
		if *dst, err = parseDecimal(v, key); err != nil {
			return SimulateConfig{}, err
		}
	}
	if cfg.Pool, err = LoadPoolConfig(v); err != nil {
		return SimulateConfig{}, err
	}
	return cfg, nil
}
