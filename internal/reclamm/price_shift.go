package reclamm

import (
	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
)

// An exponent of ONE (100% per day) halves the decaying virtual balance in
// 86400 seconds: 86400 / ln(2) ~= 124649.
var priceShiftExponentAdjustment = uint256.NewInt(124649)

// ToDailyPriceShiftBase converts a daily price shift exponent into the
// per-second decay multiplier.
func ToDailyPriceShiftBase(exponent *uint256.Int) *uint256.Int {
	var c fixedpoint.Calc
	return c.Complement(new(uint256.Int).Div(exponent, priceShiftExponentAdjustment))
}

// ToDailyPriceShiftExponent converts a per-second decay multiplier back into
// the daily price shift exponent.
func ToDailyPriceShiftExponent(base *uint256.Int) *uint256.Int {
	var c fixedpoint.Calc
	return new(uint256.Int).Mul(c.Complement(base), priceShiftExponentAdjustment)
}
