// Package reclamm holds the pure math of a two-token constant product pool
// whose real balances are offset by moving virtual balances.
package reclamm

import (
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
)

// Rounding selects the rounding direction of an invariant computation.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

// ComputeInvariant returns (realA + virtualA) * (realB + virtualB).
func ComputeInvariant(balances, virtual model.Balances, rounding Rounding) (*uint256.Int, error) {
	var c fixedpoint.Calc
	l := invariant(&c, balances, virtual, rounding)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("compute invariant: %w", err)
	}
	return l, nil
}

func invariant(c *fixedpoint.Calc, balances, virtual model.Balances, rounding Rounding) *uint256.Int {
	totalA := c.Add(balances[model.TokenA], virtual[model.TokenA])
	totalB := c.Add(balances[model.TokenB], virtual[model.TokenB])
	if rounding == RoundUp {
		return c.MulUp(totalA, totalB)
	}
	return c.MulDown(totalA, totalB)
}

// ComputeOutGivenIn quotes the amount of tokenOut paid for amountIn of tokenIn.
func ComputeOutGivenIn(balances, virtual model.Balances, indexIn, indexOut int, amountIn *uint256.Int) (*uint256.Int, error) {
	if err := checkIndexes(indexIn, indexOut); err != nil {
		return nil, err
	}

	var c fixedpoint.Calc
	totalIn := c.Add(balances[indexIn], virtual[indexIn])
	totalOut := c.Add(balances[indexOut], virtual[indexOut])
	l := c.MulUp(totalIn, totalOut)
	newTotalOut := c.DivUp(l, c.Add(totalIn, amountIn))
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("compute out given in: %w", err)
	}

	if newTotalOut.Gt(totalOut) {
		return nil, ErrNegativeAmountOut
	}
	amountOut := new(uint256.Int).Sub(totalOut, newTotalOut)
	if !amountOut.Lt(balances[indexOut]) {
		return nil, ErrAmountOutBiggerThanBalance
	}
	return amountOut, nil
}

// ComputeInGivenOut quotes the amount of tokenIn required to receive amountOut of tokenOut.
func ComputeInGivenOut(balances, virtual model.Balances, indexIn, indexOut int, amountOut *uint256.Int) (*uint256.Int, error) {
	if err := checkIndexes(indexIn, indexOut); err != nil {
		return nil, err
	}
	if !amountOut.Lt(balances[indexOut]) {
		return nil, ErrAmountOutBiggerThanBalance
	}

	var c fixedpoint.Calc
	totalIn := c.Add(balances[indexIn], virtual[indexIn])
	totalOut := c.Add(balances[indexOut], virtual[indexOut])
	l := c.MulUp(totalIn, totalOut)
	amountIn := c.Sub(c.DivUp(l, c.Sub(totalOut, amountOut)), totalIn)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("compute in given out: %w", err)
	}
	return amountIn, nil
}

func checkIndexes(indexIn, indexOut int) error {
	if indexIn < model.TokenA || indexIn > model.TokenB || indexOut != model.Other(indexIn) {
		return fmt.Errorf("%w: in=%d out=%d", ErrInvalidTokenIndex, indexIn, indexOut)
	}
	return nil
}
