package replay

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/pool"
	"reclamm/internal/reclamm"
	"reclamm/internal/vault"
)

var (
	ErrUnknownOp    = errors.New("unknown operation")
	ErrMissingField = errors.New("missing field")
	ErrOutOfOrder   = errors.New("operation timestamp out of order")
)

func required(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return nil
}

func parseUnits(field, value string, decimals uint8) (*uint256.Int, error) {
	if err := required(field, value); err != nil {
		return nil, err
	}
	v, err := fixedpoint.ParseUnits(value, decimals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

func parseScaled(field, value string) (*uint256.Int, error) {
	return parseUnits(field, value, fixedpoint.Decimals)
}

// apply runs a single operation against v and fills res on success.
func apply(v *vault.Vault, op model.Operation, res *model.OperationResult) error {
	tokens := v.Tokens()
	now := op.Timestamp

	switch op.Op {
	case model.OpInitialize:
		if len(op.Amounts) != 2 {
			return fmt.Errorf("%w: amounts needs two values", ErrMissingField)
		}
		var amounts model.Balances
		for i := range amounts {
			amount, err := parseUnits(fmt.Sprintf("amounts[%d]", i), op.Amounts[i], tokens[i].Decimals)
			if err != nil {
				return err
			}
			amounts[i] = amount
		}
		minPrice, err := parseScaled("min_price", op.MinPrice)
		if err != nil {
			return err
		}
		maxPrice, err := parseScaled("max_price", op.MaxPrice)
		if err != nil {
			return err
		}
		targetPrice, err := parseScaled("target_price", op.TargetPrice)
		if err != nil {
			return err
		}
		bpt, err := v.Initialize(amounts, minPrice, maxPrice, targetPrice, now)
		if err != nil {
			return err
		}
		res.Bpt = bpt
		res.Amounts = &amounts

	case model.OpSwap:
		if err := required("kind", op.Kind); err != nil {
			return err
		}
		kind, err := pool.ParseSwapKind(op.Kind)
		if err != nil {
			return err
		}
		if op.TokenIn != model.TokenA && op.TokenIn != model.TokenB {
			return fmt.Errorf("%w: token_in %d", reclamm.ErrInvalidTokenIndex, op.TokenIn)
		}
		tokenOut := model.Other(op.TokenIn)
		givenDecimals, limitDecimals := tokens[op.TokenIn].Decimals, tokens[tokenOut].Decimals
		if kind == pool.ExactOut {
			givenDecimals, limitDecimals = limitDecimals, givenDecimals
		}
		amount, err := parseUnits("amount", op.Amount, givenDecimals)
		if err != nil {
			return err
		}
		params := vault.SwapParams{Kind: kind, TokenIn: op.TokenIn, TokenOut: tokenOut, AmountGiven: amount}
		if op.Limit != "" {
			if params.Limit, err = parseUnits("limit", op.Limit, limitDecimals); err != nil {
				return err
			}
		}
		swapped, err := v.Swap(params, now)
		if err != nil {
			return err
		}
		res.AmountIn = swapped.AmountIn
		res.AmountOut = swapped.AmountOut

	case model.OpAddLiquidity, model.OpRemoveLiquidity:
		bpt, err := parseScaled("bpt", op.Bpt)
		if err != nil {
			return err
		}
		var amounts model.Balances
		if op.Op == model.OpAddLiquidity {
			amounts, err = v.AddLiquidityProportional(bpt, now)
		} else {
			amounts, err = v.RemoveLiquidityProportional(bpt, now)
		}
		if err != nil {
			return err
		}
		res.Bpt = bpt
		res.Amounts = &amounts

	case model.OpSetPriceRatio:
		ratio, err := parseScaled("end_price_ratio", op.EndPriceRatio)
		if err != nil {
			return err
		}
		endQ, err := reclamm.FourthRoot(ratio)
		if err != nil {
			return err
		}
		if op.EndTime == 0 {
			return fmt.Errorf("%w: end_time", ErrMissingField)
		}
		startTime := op.StartTime
		if startTime == 0 {
			startTime = now
		}
		if _, err := v.SetPriceRatioTarget(endQ, startTime, op.EndTime, now); err != nil {
			return err
		}

	case model.OpSetMargin:
		margin, err := parseScaled("value", op.Value)
		if err != nil {
			return err
		}
		if err := v.SetCenterednessMargin(margin, now); err != nil {
			return err
		}

	case model.OpSetShiftExponent:
		exponent, err := parseScaled("value", op.Value)
		if err != nil {
			return err
		}
		if _, err := v.SetDailyPriceShiftExponent(exponent, now); err != nil {
			return err
		}

	case model.OpSetSwapFee:
		fee, err := parseScaled("value", op.Value)
		if err != nil {
			return err
		}
		if err := v.SetSwapFeePercentage(fee); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}
	return nil
}
