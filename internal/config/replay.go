package config

import (
	"github.com/holiman/uint256"
	"github.com/spf13/pflag"

	"reclamm/internal/model"
	"reclamm/internal/pool"
)

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	Input     string
	Out       string
	PGDSN     string
	StateFile string
	Name      string
	BatchSize int
	Tokens    [2]model.TokenMeta
	SwapFee   *uint256.Int
	Pool      pool.PoolConfig
	LogLevel  string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	defaults := tokenDefaults()
	defaults["out"] = "./data/results.jsonl"
	defaults["batch-size"] = 500

	v, err := newViper(cfgFile, flags, defaults)
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		Input:     v.GetString("in"),
		Out:       v.GetString("out"),
		PGDSN:     v.GetString("pg-dsn"),
		StateFile: v.GetString("state-file"),
		Name:      v.GetString("name"),
		BatchSize: v.GetInt("batch-size"),
		LogLevel:  v.GetString("log-level"),
	}
	if cfg.Tokens, err = loadTokens(v); err != nil {
		return ReplayConfig{}, err
	}
	if cfg.SwapFee, err = parseDecimal(v, "swap-fee"); err != nil {
		return ReplayConfig{}, err
	}
	if cfg.Pool, err = LoadPoolConfig(v); err != nil {
		return ReplayConfig{}, err
	}
	return cfg, nil
}
