// Package fixedpoint implements 18-decimal fixed point arithmetic on 256-bit
// unsigned integers with explicit rounding direction.
package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

// Decimals is the number of fractional digits of a scaled18 value.
const Decimals = 18

var (
	// ONE is 1.0 in scaled18. Treat as read-only.
	ONE = uint256.NewInt(1e18)
	// TWO is 2.0 in scaled18. Treat as read-only.
	TWO = uint256.NewInt(2e18)
	// FOUR is 4.0 in scaled18. Treat as read-only.
	FOUR = uint256.NewInt(4e18)
)

var (
	ErrOverflow       = errors.New("fixed point overflow")
	ErrUnderflow      = errors.New("fixed point underflow")
	ErrDivisionByZero = errors.New("fixed point division by zero")
	ErrPow            = errors.New("fixed point pow")
)

// New returns x * 1e18.
func New(x uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(x), ONE)
}

// Calc evaluates fixed point expressions. The first failure is recorded and
// every later call returns zero, so a whole formula can be written without
// intermediate error checks and verified once through Err.
type Calc struct {
	err error
}

// Err returns the first error recorded by c.
func (c *Calc) Err() error {
	return c.err
}

func (c *Calc) fail(err error) *uint256.Int {
	if c.err == nil {
		c.err = err
	}
	return new(uint256.Int)
}

// Add returns a + b.
func (c *Calc) Add(a, b *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return c.fail(ErrOverflow)
	}
	return z
}

// Sub returns a - b and fails with ErrUnderflow when b > a.
func (c *Calc) Sub(a, b *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return c.fail(ErrUnderflow)
	}
	return z
}

// Mul returns the raw integer product a * b.
func (c *Calc) Mul(a, b *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return c.fail(ErrOverflow)
	}
	return z
}

// MulDivDown returns floor(a * b / d) with a 512-bit intermediate product.
func (c *Calc) MulDivDown(a, b, d *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	if d.IsZero() {
		return c.fail(ErrDivisionByZero)
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return c.fail(ErrOverflow)
	}
	return z
}

// MulDivUp returns ceil(a * b / d) with a 512-bit intermediate product.
func (c *Calc) MulDivUp(a, b, d *uint256.Int) *uint256.Int {
	z := c.MulDivDown(a, b, d)
	if c.err != nil {
		return z
	}
	if new(uint256.Int).MulMod(a, b, d).IsZero() {
		return z
	}
	return c.Add(z, uint256.NewInt(1))
}

// MulDown returns a * b rounded down.
func (c *Calc) MulDown(a, b *uint256.Int) *uint256.Int {
	return c.MulDivDown(a, b, ONE)
}

// MulUp returns a * b rounded up.
func (c *Calc) MulUp(a, b *uint256.Int) *uint256.Int {
	return c.MulDivUp(a, b, ONE)
}

// DivDown returns a / b rounded down.
func (c *Calc) DivDown(a, b *uint256.Int) *uint256.Int {
	return c.MulDivDown(a, ONE, b)
}

// DivUp returns a / b rounded up.
func (c *Calc) DivUp(a, b *uint256.Int) *uint256.Int {
	return c.MulDivUp(a, ONE, b)
}

// Sqrt returns the square root of a scaled18 value, rounded down.
func (c *Calc) Sqrt(x *uint256.Int) *uint256.Int {
	scaled := c.Mul(x, ONE)
	if c.err != nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sqrt(scaled)
}

// Complement returns max(0, ONE - x).
func (c *Calc) Complement(x *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	if !x.Lt(ONE) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(ONE, x)
}

// Min returns the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b *uint256.Int) *uint256.Int {
	if a.Gt(b) {
		return a
	}
	return b
}
