package vault

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/pool"
)

// SwapParams is a swap in raw token units. Limit is the minimum amount out
// for ExactIn and the maximum amount in for ExactOut; nil disables it.
type SwapParams struct {
	Kind        pool.SwapKind
	TokenIn     int
	TokenOut    int
	AmountGiven *uint256.Int
	Limit       *uint256.Int
}

// SwapResult is the settled swap in raw token units. Fee is charged in the
// input token and included in AmountIn.
type SwapResult struct {
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	Fee       *uint256.Int
}

// Swap executes a swap against the pool and settles raw balances.
func (v *Vault) Swap(params SwapParams, now uint64) (SwapResult, error) {
	var res SwapResult
	err := v.atomically(func() error {
		var err error
		res, err = v.swap(params, now)
		return err
	})
	if err != nil {
		return SwapResult{}, fmt.Errorf("vault swap: %w", err)
	}

	var c fixedpoint.Calc
	balances := v.balances.Clone()
	balances[params.TokenIn] = c.Add(balances[params.TokenIn], res.AmountIn)
	balances[params.TokenOut] = c.Sub(balances[params.TokenOut], res.AmountOut)
	if err := c.Err(); err != nil {
		return SwapResult{}, fmt.Errorf("vault swap: settle: %w", err)
	}
	v.balances = balances

	v.logger.Debug("swap",
		zap.Stringer("kind", params.Kind),
		zap.Int("token_in", params.TokenIn),
		zap.Stringer("amount_in", res.AmountIn),
		zap.Stringer("amount_out", res.AmountOut),
		zap.Stringer("fee", res.Fee),
		zap.Uint64("ts", now),
	)
	return res, nil
}

func (v *Vault) swap(params SwapParams, now uint64) (SwapResult, error) {
	if params.AmountGiven == nil || params.AmountGiven.IsZero() {
		return SwapResult{}, ErrAmountGivenZero
	}
	if params.TokenIn < model.TokenA || params.TokenIn > model.TokenB || params.TokenOut != model.Other(params.TokenIn) {
		return SwapResult{}, fmt.Errorf("%w: in=%d out=%d", ErrInvalidToken, params.TokenIn, params.TokenOut)
	}
	in, out := v.scalers[params.TokenIn], v.scalers[params.TokenOut]

	var c fixedpoint.Calc
	scaled := v.scaledBalances(&c)
	if err := c.Err(); err != nil {
		return SwapResult{}, err
	}

	req := pool.SwapRequest{
		Kind:     params.Kind,
		IndexIn:  params.TokenIn,
		IndexOut: params.TokenOut,
		Balances: scaled,
	}

	var res SwapResult
	switch params.Kind {
	case pool.ExactIn:
		amountIn := in.toScaled18Down(&c, params.AmountGiven)
		fee := c.MulUp(amountIn, v.swapFee)
		req.AmountGiven = c.Sub(amountIn, fee)
		if err := c.Err(); err != nil {
			return SwapResult{}, err
		}
		swapped, err := v.pool.Swap(req, now)
		if err != nil {
			return SwapResult{}, err
		}
		res.AmountIn = params.AmountGiven.Clone()
		res.AmountOut = out.toRawDown(&c, swapped.AmountOut)
		res.Fee = in.toRawUp(&c, fee)
		if err := c.Err(); err != nil {
			return SwapResult{}, err
		}
		if params.Limit != nil && res.AmountOut.Lt(params.Limit) {
			return SwapResult{}, fmt.Errorf("%w: amount out %s below %s", ErrSwapLimit, res.AmountOut, params.Limit)
		}

	case pool.ExactOut:
		req.AmountGiven = out.toScaled18Up(&c, params.AmountGiven)
		if err := c.Err(); err != nil {
			return SwapResult{}, err
		}
		swapped, err := v.pool.Swap(req, now)
		if err != nil {
			return SwapResult{}, err
		}
		amountIn := c.DivUp(swapped.AmountIn, c.Complement(v.swapFee))
		fee := c.Sub(amountIn, swapped.AmountIn)
		res.AmountIn = in.toRawUp(&c, amountIn)
		res.AmountOut = params.AmountGiven.Clone()
		res.Fee = in.toRawUp(&c, fee)
		if err := c.Err(); err != nil {
			return SwapResult{}, err
		}
		if params.Limit != nil && res.AmountIn.Gt(params.Limit) {
			return SwapResult{}, fmt.Errorf("%w: amount in %s above %s", ErrSwapLimit, res.AmountIn, params.Limit)
		}

	default:
		return SwapResult{}, fmt.Errorf("unknown swap kind %s", params.Kind)
	}

	if !res.AmountOut.Lt(v.balances[params.TokenOut]) {
		return SwapResult{}, fmt.Errorf("amount out %s exceeds balance %s", res.AmountOut, v.balances[params.TokenOut])
	}
	return res, nil
}
