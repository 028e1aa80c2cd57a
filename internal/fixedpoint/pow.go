package fixedpoint

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const powPrecision = 36

var (
	// 1e-14 relative error allowance applied around every pow result.
	maxPowRelativeError = uint256.NewInt(10000)

	// e^-42 is below 1 wei.
	minPowExponent = decimal.NewFromInt(-42)
	// e^135 * 1e18 still fits in 256 bits.
	maxPowExponent = decimal.NewFromInt(135)
)

// PowDown returns x^y rounded so the result never exceeds the exact value.
func (c *Calc) PowDown(x, y *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	switch {
	case y.Eq(ONE):
		return x.Clone()
	case y.Eq(TWO):
		return c.MulDown(x, x)
	case y.Eq(FOUR):
		square := c.MulDown(x, x)
		return c.MulDown(square, square)
	}

	raw, err := pow(x, y)
	if err != nil {
		return c.fail(err)
	}
	maxErr := c.Add(c.MulUp(raw, maxPowRelativeError), uint256.NewInt(1))
	if raw.Lt(maxErr) {
		return new(uint256.Int)
	}
	return c.Sub(raw, maxErr)
}

// PowUp returns x^y rounded so the result is never below the exact value.
func (c *Calc) PowUp(x, y *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	switch {
	case y.Eq(ONE):
		return x.Clone()
	case y.Eq(TWO):
		return c.MulUp(x, x)
	case y.Eq(FOUR):
		square := c.MulUp(x, x)
		return c.MulUp(square, square)
	}

	raw, err := pow(x, y)
	if err != nil {
		return c.fail(err)
	}
	maxErr := c.Add(c.MulUp(raw, maxPowRelativeError), uint256.NewInt(1))
	return c.Add(raw, maxErr)
}

// pow evaluates exp(y * ln x) in decimal arithmetic and truncates to scaled18.
func pow(x, y *uint256.Int) (*uint256.Int, error) {
	switch {
	case y.IsZero():
		return ONE.Clone(), nil
	case x.IsZero():
		return new(uint256.Int), nil
	case x.Eq(ONE):
		return ONE.Clone(), nil
	}

	ln, err := ToDecimal(x).Ln(powPrecision)
	if err != nil {
		return nil, fmt.Errorf("%w: ln: %v", ErrPow, err)
	}
	exponent := ln.Mul(ToDecimal(y)).Truncate(powPrecision)
	if exponent.LessThan(minPowExponent) {
		return new(uint256.Int), nil
	}
	if exponent.GreaterThan(maxPowExponent) {
		return nil, ErrOverflow
	}

	result, err := exponent.ExpTaylor(powPrecision)
	if err != nil {
		return nil, fmt.Errorf("%w: exp: %v", ErrPow, err)
	}
	z, overflow := uint256.FromBig(result.Shift(Decimals).Truncate(0).BigInt())
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}
