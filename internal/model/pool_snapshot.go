package model

import "github.com/holiman/uint256"

// PoolSnapshot is a derived, read-only view of a pool at a timestamp.
// All amounts are scaled18.
type PoolSnapshot struct {
	Timestamp               uint64          `json:"ts"`
	Balances                Balances        `json:"balances"`
	VirtualBalances         Balances        `json:"virtual_balances"`
	Invariant               *uint256.Int    `json:"invariant"`
	SpotPrice               *uint256.Int    `json:"spot_price"`
	MinPrice                *uint256.Int    `json:"min_price"`
	MaxPrice                *uint256.Int    `json:"max_price"`
	PriceRatio              *uint256.Int    `json:"price_ratio"`
	FourthRootPriceRatio    *uint256.Int    `json:"fourth_root_price_ratio"`
	Centeredness            *uint256.Int    `json:"centeredness"`
	IsAboveCenter           bool            `json:"is_above_center"`
	WithinTargetRange       bool            `json:"within_target_range"`
	CenterednessMargin      *uint256.Int    `json:"centeredness_margin"`
	DailyPriceShiftExponent *uint256.Int    `json:"daily_price_shift_exponent"`
	PriceRatioState         PriceRatioState `json:"price_ratio_state"`
}
