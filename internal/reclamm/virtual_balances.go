package reclamm

import (
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
)

// VirtualBalanceUpdate is the result of refreshing virtual balances.
type VirtualBalanceUpdate struct {
	VirtualBalances   model.Balances
	Changed           bool
	PriceRatioUpdated bool
	RangeShifted      bool
}

// ComputeCurrentVirtualBalances refreshes the last virtual balances of state
// at now. Virtual balances follow an active price ratio update and shift
// toward the center while the pool is outside its target range. Calling it
// again at the same timestamp returns the stored balances unchanged.
func ComputeCurrentVirtualBalances(balances model.Balances, state model.PoolState, now uint64) (VirtualBalanceUpdate, error) {
	last := state.LastVirtualBalances
	update := VirtualBalanceUpdate{VirtualBalances: last.Clone()}
	if now == state.LastTimestamp {
		return update, nil
	}
	if now < state.LastTimestamp {
		return update, fmt.Errorf("%w: now %d before last update %d", ErrTimestampOutOfRange, now, state.LastTimestamp)
	}

	_, above, err := ComputeCenteredness(balances, last)
	if err != nil {
		return update, err
	}

	schedule := state.PriceRatioState
	if now > schedule.StartTime && state.LastTimestamp < schedule.EndTime {
		q, err := ComputeFourthRootPriceRatio(now, schedule)
		if err != nil {
			return update, err
		}
		virtual, err := ComputeVirtualBalancesUpdatingPriceRatio(q, balances, last, above)
		if err != nil {
			return update, err
		}
		update.VirtualBalances = virtual
		update.PriceRatioUpdated = true
		update.Changed = true
	}

	within, err := IsPoolWithinTargetRange(balances, update.VirtualBalances, state.CenterednessMargin)
	if err != nil {
		return update, err
	}
	if !within {
		virtual, err := ComputeVirtualBalancesUpdatingPriceRange(
			balances,
			update.VirtualBalances,
			above,
			state.DailyPriceShiftBase,
			now-state.LastTimestamp,
		)
		if err != nil {
			return update, err
		}
		update.VirtualBalances = virtual
		update.RangeShifted = true
		update.Changed = true
	}

	return update, nil
}

// ComputeVirtualBalancesUpdatingPriceRatio solves for virtual balances that
// keep the centeredness of last while making invariant / (Va * Vb) equal
// q^2, the square root of the target price ratio.
//
// With C the centeredness, Q = q^2 and u/o the abundant/scarce sides:
//
//	Vu = Ru * (1 + C + sqrt(C * (C + 4Q - 2) + 1)) / (2 * (Q - 1))
//	Vo = Ro * Vu / (C * Ru)
func ComputeVirtualBalancesUpdatingPriceRatio(fourthRootPriceRatio *uint256.Int, balances, last model.Balances, aboveCenter bool) (model.Balances, error) {
	u, o := sides(aboveCenter)

	var c fixedpoint.Calc
	centeredness, _ := computeCenteredness(&c, balances, last)
	sqrtPriceRatio := c.MulDown(fourthRootPriceRatio, fourthRootPriceRatio)
	if c.Err() == nil && !sqrtPriceRatio.Gt(fixedpoint.ONE) {
		return model.Balances{}, fmt.Errorf("%w: %s", ErrInvalidFourthRootPriceRatio, fourthRootPriceRatio)
	}
	ratioMinusOne := c.Sub(sqrtPriceRatio, fixedpoint.ONE)

	var out model.Balances
	if centeredness.IsZero() {
		// The scarce side is empty; keep the edge spot price.
		out[u] = c.DivDown(balances[u], ratioMinusOne)
		out[o] = c.MulDivDown(last[o], c.Add(balances[u], out[u]), c.Add(balances[u], last[u]))
	} else {
		inner := c.Sub(c.Add(centeredness, c.Mul(uint256.NewInt(4), sqrtPriceRatio)), fixedpoint.TWO)
		root := c.Sqrt(c.Add(c.MulDown(centeredness, inner), fixedpoint.ONE))
		numerator := c.Add(c.Add(fixedpoint.ONE, centeredness), root)
		denominator := c.Mul(uint256.NewInt(2), ratioMinusOne)
		out[u] = c.MulDivDown(balances[u], numerator, denominator)
		out[o] = c.MulDivDown(balances[o], out[u], c.MulDown(centeredness, balances[u]))
	}

	if err := c.Err(); err != nil {
		return model.Balances{}, fmt.Errorf("update virtual balances for price ratio: %w", err)
	}
	if out[u].IsZero() || out[o].IsZero() {
		return model.Balances{}, ErrZeroVirtualBalance
	}
	return out, nil
}

// ComputeVirtualBalancesUpdatingPriceRange moves an out-of-range pool back
// toward its center. The scarce side virtual balance decays by
// base^elapsed, floored so the pool never overshoots the center; the
// abundant side is then recomputed so the price ratio is unchanged:
//
//	Vu = Ru * (Vo + Ro) / ((sqrt(priceRatio) - 1) * Vo - Ro)
func ComputeVirtualBalancesUpdatingPriceRange(balances, virtual model.Balances, aboveCenter bool, dailyPriceShiftBase *uint256.Int, elapsed uint64) (model.Balances, error) {
	u, o := sides(aboveCenter)

	var c fixedpoint.Calc
	minPrice, maxPrice := priceRange(&c, balances, virtual)
	sqrtPriceRatio := c.Sqrt(c.DivUp(maxPrice, minPrice))
	fourthRootPriceRatio := c.Sqrt(sqrtPriceRatio)
	if c.Err() == nil && !fourthRootPriceRatio.Gt(fixedpoint.ONE) {
		return model.Balances{}, fmt.Errorf("%w: %s", ErrInvalidFourthRootPriceRatio, fourthRootPriceRatio)
	}

	decay := c.PowDown(dailyPriceShiftBase, c.Mul(uint256.NewInt(elapsed), fixedpoint.ONE))
	var out model.Balances
	out[o] = fixedpoint.Max(
		c.MulDown(virtual[o], decay),
		c.DivDown(balances[o], c.Sub(fourthRootPriceRatio, fixedpoint.ONE)),
	)
	out[u] = c.MulDivDown(
		balances[u],
		c.Add(out[o], balances[o]),
		c.Sub(c.MulDown(c.Sub(sqrtPriceRatio, fixedpoint.ONE), out[o]), balances[o]),
	)

	if err := c.Err(); err != nil {
		return model.Balances{}, fmt.Errorf("update virtual balances for price range: %w", err)
	}
	if out[u].IsZero() || out[o].IsZero() {
		return model.Balances{}, ErrZeroVirtualBalance
	}
	return out, nil
}
