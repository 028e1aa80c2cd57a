package vault

import (
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
)

// scaler converts raw token amounts to scaled18 values and back.
type scaler struct {
	multiplier *uint256.Int
	rate       *uint256.Int
}

func newScaler(token model.TokenMeta) (scaler, error) {
	if token.Decimals > fixedpoint.Decimals {
		return scaler{}, fmt.Errorf("%w: %s has %d decimals", ErrInvalidToken, token.Symbol, token.Decimals)
	}
	rate := fixedpoint.ONE
	if token.Rate != nil {
		if token.Rate.IsZero() {
			return scaler{}, fmt.Errorf("%w: %s has zero rate", ErrInvalidToken, token.Symbol)
		}
		rate = token.Rate
	}
	multiplier := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(fixedpoint.Decimals-token.Decimals)))
	return scaler{multiplier: multiplier, rate: rate.Clone()}, nil
}

func (s scaler) toScaled18Down(c *fixedpoint.Calc, raw *uint256.Int) *uint256.Int {
	return c.MulDown(c.Mul(raw, s.multiplier), s.rate)
}

func (s scaler) toScaled18Up(c *fixedpoint.Calc, raw *uint256.Int) *uint256.Int {
	return c.MulUp(c.Mul(raw, s.multiplier), s.rate)
}

func (s scaler) toRawDown(c *fixedpoint.Calc, scaled *uint256.Int) *uint256.Int {
	v := c.DivDown(scaled, s.rate)
	if c.Err() != nil {
		return v
	}
	return new(uint256.Int).Div(v, s.multiplier)
}

func (s scaler) toRawUp(c *fixedpoint.Calc, scaled *uint256.Int) *uint256.Int {
	v := c.DivUp(scaled, s.rate)
	if c.Err() != nil {
		return v
	}
	q, r := new(uint256.Int).DivMod(v, s.multiplier, new(uint256.Int))
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}
