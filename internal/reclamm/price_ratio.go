package reclamm

import (
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
)

// ComputeFourthRootPriceRatio interpolates the fourth root price ratio of the
// schedule at now. The interpolation is geometric:
//
//	q = start * (end/start)^t,  t = (now - startTime) / (endTime - startTime)
//
// evaluated as start * end^t / start^t and clamped to [start, end].
func ComputeFourthRootPriceRatio(now uint64, state model.PriceRatioState) (*uint256.Int, error) {
	start := state.StartFourthRootPriceRatio
	end := state.EndFourthRootPriceRatio
	if start == nil || end == nil {
		return nil, ErrInvalidFourthRootPriceRatio
	}

	switch {
	case now >= state.EndTime || start.Eq(end):
		return end.Clone(), nil
	case now <= state.StartTime:
		return start.Clone(), nil
	}

	var c fixedpoint.Calc
	t := c.DivDown(uint256.NewInt(now-state.StartTime), uint256.NewInt(state.EndTime-state.StartTime))
	q := c.DivDown(c.MulDown(start, c.PowDown(end, t)), c.PowDown(start, t))
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("interpolate price ratio: %w", err)
	}

	lo, hi := fixedpoint.Min(start, end), fixedpoint.Max(start, end)
	if q.Lt(lo) {
		return lo.Clone(), nil
	}
	if q.Gt(hi) {
		return hi.Clone(), nil
	}
	return q, nil
}

// FourthRoot returns the fourth root of a scaled18 price ratio.
func FourthRoot(priceRatio *uint256.Int) (*uint256.Int, error) {
	var c fixedpoint.Calc
	q := c.Sqrt(c.Sqrt(priceRatio))
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("fourth root: %w", err)
	}
	return q, nil
}
