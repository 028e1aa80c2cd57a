package model

import "github.com/holiman/uint256"

// PriceRatioState describes a geometric interpolation of the fourth root
// price ratio between StartTime and EndTime.
type PriceRatioState struct {
	StartFourthRootPriceRatio *uint256.Int `json:"start_fourth_root_price_ratio"`
	EndFourthRootPriceRatio   *uint256.Int `json:"end_fourth_root_price_ratio"`
	StartTime                 uint64       `json:"start_time"`
	EndTime                   uint64       `json:"end_time"`
}

// Clone returns a deep copy.
func (s PriceRatioState) Clone() PriceRatioState {
	out := s
	if s.StartFourthRootPriceRatio != nil {
		out.StartFourthRootPriceRatio = s.StartFourthRootPriceRatio.Clone()
	}
	if s.EndFourthRootPriceRatio != nil {
		out.EndFourthRootPriceRatio = s.EndFourthRootPriceRatio.Clone()
	}
	return out
}

// PoolState is the persistent state of a pool.
type PoolState struct {
	LastVirtualBalances Balances        `json:"last_virtual_balances"`
	LastTimestamp       uint64          `json:"last_timestamp"`
	CenterednessMargin  *uint256.Int    `json:"centeredness_margin"`
	DailyPriceShiftBase *uint256.Int    `json:"daily_price_shift_base"`
	PriceRatioState     PriceRatioState `json:"price_ratio_state"`
}

// Clone returns a deep copy.
func (s PoolState) Clone() PoolState {
	out := s
	out.LastVirtualBalances = s.LastVirtualBalances.Clone()
	if s.CenterednessMargin != nil {
		out.CenterednessMargin = s.CenterednessMargin.Clone()
	}
	if s.DailyPriceShiftBase != nil {
		out.DailyPriceShiftBase = s.DailyPriceShiftBase.Clone()
	}
	out.PriceRatioState = s.PriceRatioState.Clone()
	return out
}
