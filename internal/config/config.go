package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/pool"
)

const envPrefix = "RECLAMM"

// newViper merges defaults, environment variables, flags and the config file.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// LoadPoolConfig overrides the default pool limits with values from the
// pool section. Percentages and ratios are decimal strings.
func LoadPoolConfig(v *viper.Viper) (pool.PoolConfig, error) {
	cfg := pool.DefaultPoolConfig()
	fields := []struct {
		key string
		dst **uint256.Int
	}{
		{"pool.min-swap-fee", &cfg.MinSwapFeePercentage},
		{"pool.max-swap-fee", &cfg.MaxSwapFeePercentage},
		{"pool.max-centeredness-margin", &cfg.MaxCenterednessMargin},
		{"pool.max-daily-price-shift-exponent", &cfg.MaxDailyPriceShiftExponent},
		{"pool.max-daily-price-ratio-update-rate", &cfg.MaxDailyPriceRatioUpdateRate},
		{"pool.min-token-balance", &cfg.MinTokenBalance},
		{"pool.min-pool-centeredness", &cfg.MinPoolCenteredness},
		{"pool.balance-ratio-tolerance", &cfg.BalanceRatioTolerance},
		{"pool.initial-balance-a", &cfg.InitialBalanceA},
		{"pool.initial-centeredness-margin", &cfg.InitialCenterednessMargin},
		{"pool.initial-daily-price-shift-exponent", &cfg.InitialDailyPriceShiftExponent},
	}
	for _, f := range fields {
		if !v.IsSet(f.key) {
			continue
		}
		value, err := fixedpoint.Parse(v.GetString(f.key))
		if err != nil {
			return pool.PoolConfig{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = value
	}

	if v.IsSet("pool.min-price-ratio-update-duration") {
		d := v.GetDuration("pool.min-price-ratio-update-duration")
		if d < time.Second {
			return pool.PoolConfig{}, fmt.Errorf("pool.min-price-ratio-update-duration must be at least 1s")
		}
		cfg.MinPriceRatioUpdateDuration = uint64(d / time.Second)
	}

	if err := cfg.Validate(); err != nil {
		return pool.PoolConfig{}, err
	}
	return cfg, nil
}

// loadTokens reads token-a-* and token-b-* metadata.
func loadTokens(v *viper.Viper) ([2]model.TokenMeta, error) {
	var tokens [2]model.TokenMeta
	for i, prefix := range []string{"token-a", "token-b"} {
		decimals := v.GetUint(prefix + "-decimals")
		if decimals > fixedpoint.Decimals {
			return tokens, fmt.Errorf("%s-decimals: %d exceeds %d", prefix, decimals, fixedpoint.Decimals)
		}
		tokens[i] = model.TokenMeta{
			Address:  v.GetString(prefix + "-address"),
			Symbol:   v.GetString(prefix + "-symbol"),
			Decimals: uint8(decimals),
		}
		if rate := v.GetString(prefix + "-rate"); rate != "" {
			parsed, err := fixedpoint.Parse(rate)
			if err != nil {
				return tokens, fmt.Errorf("%s-rate: %w", prefix, err)
			}
			tokens[i].Rate = parsed
		}
	}
	return tokens, nil
}

func tokenDefaults() map[string]interface{} {
	return map[string]interface{}{
		"token-a-symbol":   "A",
		"token-a-decimals": 18,
		"token-b-symbol":   "B",
		"token-b-decimals": 18,
		"swap-fee":         "0.003",
		"name":             "default",
	}
}

func parseDecimal(v *viper.Viper, key string) (*uint256.Int, error) {
	s := v.GetString(key)
	if s == "" {
		return nil, nil
	}
	value, err := fixedpoint.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
