package reclamm

import (
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
)

// TheoreticalPool is an ideally shaped pool for a price range and target
// price, with real balance A near a reference amount.
type TheoreticalPool struct {
	Balances             model.Balances
	VirtualBalances      model.Balances
	FourthRootPriceRatio *uint256.Int
}

// ComputeTheoreticalPriceRatioAndBalances solves, in closed form, for real and
// virtual balances such that the price when real A is exhausted is maxPrice,
// the price when real B is exhausted is minPrice and the spot price is
// targetPrice.
func ComputeTheoreticalPriceRatioAndBalances(minPrice, maxPrice, targetPrice, referenceBalanceA *uint256.Int) (TheoreticalPool, error) {
	if minPrice == nil || maxPrice == nil || targetPrice == nil {
		return TheoreticalPool{}, ErrInvalidPrice
	}
	if minPrice.IsZero() || !minPrice.Lt(maxPrice) || targetPrice.Lt(minPrice) || targetPrice.Gt(maxPrice) {
		return TheoreticalPool{}, fmt.Errorf("%w: min=%s max=%s target=%s", ErrInvalidPrice, minPrice, maxPrice, targetPrice)
	}

	var c fixedpoint.Calc
	priceRatio := c.DivDown(maxPrice, minPrice)
	sqrtPriceRatio := c.Sqrt(priceRatio)
	fourthRoot := c.Sqrt(sqrtPriceRatio)
	if c.Err() == nil && !sqrtPriceRatio.Gt(fixedpoint.ONE) {
		return TheoreticalPool{}, fmt.Errorf("%w: price range too narrow", ErrInvalidPrice)
	}

	va := c.DivDown(referenceBalanceA, c.Sub(sqrtPriceRatio, fixedpoint.ONE))
	vb := c.MulDown(minPrice, c.Add(va, referenceBalanceA))

	rb := c.Sub(c.Sqrt(c.MulUp(c.MulUp(targetPrice, vb), c.Add(referenceBalanceA, va))), vb)
	total := c.Add(rb, vb)
	offset := c.MulDown(va, targetPrice)
	ra := new(uint256.Int)
	if total.Gt(offset) {
		ra = c.DivDown(c.Sub(total, offset), targetPrice)
	}

	if err := c.Err(); err != nil {
		return TheoreticalPool{}, fmt.Errorf("compute theoretical balances: %w", err)
	}
	return TheoreticalPool{
		Balances:             model.NewBalances(ra, rb),
		VirtualBalances:      model.NewBalances(va, vb),
		FourthRootPriceRatio: fourthRoot,
	}, nil
}
