package reclamm

import (
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
)

// ComputeCenteredness returns how close the real balance ratio is to the
// virtual balance ratio, in [0, ONE], and whether the pool is above center
// (realA/realB > virtualA/virtualB).
func ComputeCenteredness(balances, virtual model.Balances) (*uint256.Int, bool, error) {
	var c fixedpoint.Calc
	centeredness, above := computeCenteredness(&c, balances, virtual)
	if err := c.Err(); err != nil {
		return nil, false, fmt.Errorf("compute centeredness: %w", err)
	}
	return centeredness, above, nil
}

func computeCenteredness(c *fixedpoint.Calc, balances, virtual model.Balances) (*uint256.Int, bool) {
	aCrossB := c.Mul(balances[model.TokenA], virtual[model.TokenB])
	bCrossA := c.Mul(balances[model.TokenB], virtual[model.TokenA])
	if c.Err() != nil {
		return new(uint256.Int), false
	}

	above := aCrossB.Gt(bCrossA)
	if balances[model.TokenA].IsZero() || balances[model.TokenB].IsZero() {
		return new(uint256.Int), above
	}
	if above {
		return c.MulDivDown(bCrossA, fixedpoint.ONE, aCrossB), true
	}
	return c.MulDivDown(aCrossB, fixedpoint.ONE, bCrossA), false
}

// IsAboveCenter reports whether token A is the abundant side of the pool.
func IsAboveCenter(balances, virtual model.Balances) (bool, error) {
	_, above, err := ComputeCenteredness(balances, virtual)
	return above, err
}

// IsPoolWithinTargetRange reports whether centeredness is at least margin.
func IsPoolWithinTargetRange(balances, virtual model.Balances, margin *uint256.Int) (bool, error) {
	centeredness, _, err := ComputeCenteredness(balances, virtual)
	if err != nil {
		return false, err
	}
	return !centeredness.Lt(margin), nil
}

// sides returns the undervalued (abundant) and overvalued (scarce) token indexes.
func sides(aboveCenter bool) (undervalued, overvalued int) {
	if aboveCenter {
		return model.TokenA, model.TokenB
	}
	return model.TokenB, model.TokenA
}

// ComputePriceRange returns the prices of A in B at which the real balance of
// B (min) and of A (max) would be exhausted.
func ComputePriceRange(balances, virtual model.Balances) (*uint256.Int, *uint256.Int, error) {
	var c fixedpoint.Calc
	minPrice, maxPrice := priceRange(&c, balances, virtual)
	if err := c.Err(); err != nil {
		return nil, nil, fmt.Errorf("compute price range: %w", err)
	}
	return minPrice, maxPrice, nil
}

func priceRange(c *fixedpoint.Calc, balances, virtual model.Balances) (*uint256.Int, *uint256.Int) {
	l := invariant(c, balances, virtual, RoundDown)
	va := virtual[model.TokenA]
	vb := virtual[model.TokenB]
	minPrice := c.DivDown(c.MulDown(vb, vb), l)
	maxPrice := c.DivDown(l, c.MulDown(va, va))
	return minPrice, maxPrice
}

// ComputePriceRatio returns maxPrice / minPrice, rounded up.
func ComputePriceRatio(balances, virtual model.Balances) (*uint256.Int, error) {
	var c fixedpoint.Calc
	minPrice, maxPrice := priceRange(&c, balances, virtual)
	ratio := c.DivUp(maxPrice, minPrice)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("compute price ratio: %w", err)
	}
	return ratio, nil
}

// ComputeSpotPrice returns the marginal price of A in B.
func ComputeSpotPrice(balances, virtual model.Balances) (*uint256.Int, error) {
	var c fixedpoint.Calc
	price := c.DivDown(
		c.Add(balances[model.TokenB], virtual[model.TokenB]),
		c.Add(balances[model.TokenA], virtual[model.TokenA]),
	)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("compute spot price: %w", err)
	}
	return price, nil
}
