package pool

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
)

// PoolConfig holds the immutable limits of a pool.
type PoolConfig struct {
	MinSwapFeePercentage *uint256.Int
	MaxSwapFeePercentage *uint256.Int

	MaxCenterednessMargin        *uint256.Int
	MaxDailyPriceShiftExponent   *uint256.Int
	MaxDailyPriceRatioUpdateRate *uint256.Int
	MinPriceRatioUpdateDuration  uint64

	MinTokenBalance       *uint256.Int
	MinPoolCenteredness   *uint256.Int
	BalanceRatioTolerance *uint256.Int

	// InitialBalanceA is the reference real balance of token A used by the
	// initialization solver.
	InitialBalanceA *uint256.Int

	MaxFourthRootPriceRatio *uint256.Int
	MaxBalance              *uint256.Int
	MaxTimestamp            uint64

	InitialCenterednessMargin      *uint256.Int
	InitialDailyPriceShiftExponent *uint256.Int
}

// DefaultPoolConfig returns the standard pool limits.
func DefaultPoolConfig() PoolConfig {
	maxFourthRoot := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	maxFourthRoot.SubUint64(maxFourthRoot, 1)
	maxBalance := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	maxBalance.SubUint64(maxBalance, 1)

	return PoolConfig{
		MinSwapFeePercentage:           uint256.NewInt(1e13),
		MaxSwapFeePercentage:           uint256.NewInt(1e17),
		MaxCenterednessMargin:          uint256.NewInt(5e17),
		MaxDailyPriceShiftExponent:     uint256.NewInt(1e18),
		MaxDailyPriceRatioUpdateRate:   uint256.NewInt(2e18),
		MinPriceRatioUpdateDuration:    86400,
		MinTokenBalance:                uint256.NewInt(1e14),
		MinPoolCenteredness:            uint256.NewInt(1e3),
		BalanceRatioTolerance:          uint256.NewInt(1e14),
		InitialBalanceA:                fixedpoint.New(1_000_000),
		MaxFourthRootPriceRatio:        maxFourthRoot,
		MaxBalance:                     maxBalance,
		MaxTimestamp:                   math.MaxUint32,
		InitialCenterednessMargin:      uint256.NewInt(2e17),
		InitialDailyPriceShiftExponent: uint256.NewInt(1e18),
	}
}

// centerednessMarginCeiling bounds every margin at 50%.
var centerednessMarginCeiling = uint256.NewInt(5e17)

// Validate checks that the limits are present and consistent.
func (c PoolConfig) Validate() error {
	required := map[string]*uint256.Int{
		"min swap fee":                       c.MinSwapFeePercentage,
		"max swap fee":                       c.MaxSwapFeePercentage,
		"max centeredness margin":            c.MaxCenterednessMargin,
		"max daily price shift exponent":     c.MaxDailyPriceShiftExponent,
		"max daily price ratio update":       c.MaxDailyPriceRatioUpdateRate,
		"min token balance":                  c.MinTokenBalance,
		"min pool centeredness":              c.MinPoolCenteredness,
		"balance ratio tolerance":            c.BalanceRatioTolerance,
		"initial balance a":                  c.InitialBalanceA,
		"max fourth root price ratio":        c.MaxFourthRootPriceRatio,
		"max balance":                        c.MaxBalance,
		"initial centeredness margin":        c.InitialCenterednessMargin,
		"initial daily price shift exponent": c.InitialDailyPriceShiftExponent,
	}
	for name, v := range required {
		if v == nil {
			return fmt.Errorf("pool config: %s is required", name)
		}
	}

	switch {
	case c.MinSwapFeePercentage.Gt(c.MaxSwapFeePercentage):
		return fmt.Errorf("pool config: min swap fee above max swap fee")
	case !c.MaxSwapFeePercentage.Lt(fixedpoint.ONE):
		return fmt.Errorf("pool config: max swap fee must be below 100%%")
	case c.MaxCenterednessMargin.Gt(centerednessMarginCeiling):
		return fmt.Errorf("pool config: max centeredness margin above 50%%")
	case !c.MaxDailyPriceRatioUpdateRate.Gt(fixedpoint.ONE):
		return fmt.Errorf("pool config: max daily price ratio update rate must exceed 1")
	case c.MinPriceRatioUpdateDuration == 0:
		return fmt.Errorf("pool config: min price ratio update duration must be positive")
	case !c.BalanceRatioTolerance.Lt(fixedpoint.ONE):
		return fmt.Errorf("pool config: balance ratio tolerance must be below 100%%")
	case c.InitialBalanceA.IsZero():
		return fmt.Errorf("pool config: initial balance a must be positive")
	case !c.MaxFourthRootPriceRatio.Gt(fixedpoint.ONE):
		return fmt.Errorf("pool config: max fourth root price ratio must exceed 1")
	case c.MaxTimestamp == 0:
		return fmt.Errorf("pool config: max timestamp must be positive")
	case c.InitialCenterednessMargin.Gt(c.MaxCenterednessMargin):
		return fmt.Errorf("pool config: initial centeredness margin above max")
	case c.InitialDailyPriceShiftExponent.Gt(c.MaxDailyPriceShiftExponent):
		return fmt.Errorf("pool config: initial daily price shift exponent above max")
	}
	return nil
}
