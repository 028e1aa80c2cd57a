package fixedpoint

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Parse converts a decimal string such as "0.5" into scaled18.
func Parse(s string) (*uint256.Int, error) {
	return ParseUnits(s, Decimals)
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) *uint256.Int {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseUnits converts a decimal string into an integer amount with the given
// number of fractional digits.
func ParseUnits(s string, decimals uint8) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("parse %q: negative value", s)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("parse %q: more than %d fractional digits", s, decimals)
	}
	z, overflow := uint256.FromBig(shifted.BigInt())
	if overflow {
		return nil, fmt.Errorf("parse %q: %w", s, ErrOverflow)
	}
	return z, nil
}

// Format renders a scaled18 value as a decimal string.
func Format(x *uint256.Int) string {
	return FormatUnits(x, Decimals)
}

// FormatUnits renders an integer amount with the given number of fractional digits.
func FormatUnits(x *uint256.Int, decimals uint8) string {
	if x == nil {
		return ""
	}
	return ToDecimalUnits(x, decimals).String()
}

// ToDecimal converts a scaled18 value to a decimal.
func ToDecimal(x *uint256.Int) decimal.Decimal {
	return ToDecimalUnits(x, Decimals)
}

// ToDecimalUnits converts an integer amount with the given fractional digits to a decimal.
func ToDecimalUnits(x *uint256.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(x.ToBig(), -int32(decimals))
}
