package config

import (
	"time"

	"github.com/spf13/pflag"

	"reclamm/internal/pool"
)

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	RPCURL       string
	TokenA       string
	TokenB       string
	Holder       string
	Block        uint64
	StateFile    string
	PGDSN        string
	Name         string
	MaxRetries   int
	RetryBackoff time.Duration
	Pool         pool.PoolConfig
	LogLevel     string
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"name":          "default",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		RPCURL:       v.GetString("rpc"),
		TokenA:       v.GetString("token-a"),
		TokenB:       v.GetString("token-b"),
		Holder:       v.GetString("holder"),
		Block:        v.GetUint64("block"),
		StateFile:    v.GetString("state-file"),
		PGDSN:        v.GetString("pg-dsn"),
		Name:         v.GetString("name"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.Pool, err = LoadPoolConfig(v); err != nil {
		return SnapshotConfig{}, err
	}
	return cfg, nil
}
