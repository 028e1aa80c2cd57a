package vault

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/pool"
)

// AddLiquidityProportional mints bptAmountOut and pulls the proportional
// raw amounts of both tokens, rounded up.
func (v *Vault) AddLiquidityProportional(bptAmountOut *uint256.Int, now uint64) (model.Balances, error) {
	if bptAmountOut == nil || bptAmountOut.IsZero() {
		return model.Balances{}, fmt.Errorf("add liquidity: %w", ErrAmountGivenZero)
	}
	if !v.pool.Initialized() {
		return model.Balances{}, fmt.Errorf("add liquidity: %w", pool.ErrNotInitialized)
	}

	var c fixedpoint.Calc
	amounts := model.NewBalances(
		c.MulDivUp(v.balances[model.TokenA], bptAmountOut, v.totalSupply),
		c.MulDivUp(v.balances[model.TokenB], bptAmountOut, v.totalSupply),
	)
	balances := model.NewBalances(
		c.Add(v.balances[model.TokenA], amounts[model.TokenA]),
		c.Add(v.balances[model.TokenB], amounts[model.TokenB]),
	)
	supply := c.Add(v.totalSupply, bptAmountOut)
	scaled := v.scaledBalances(&c)
	if err := c.Err(); err != nil {
		return model.Balances{}, fmt.Errorf("add liquidity: %w", err)
	}

	err := v.atomically(func() error {
		_, err := v.pool.AddLiquidityProportional(scaled, bptAmountOut, v.totalSupply, now)
		return err
	})
	if err != nil {
		return model.Balances{}, err
	}

	v.balances = balances
	v.totalSupply = supply
	v.logger.Debug("add liquidity",
		zap.Stringer("bpt", bptAmountOut),
		zap.Stringer("amount_a", amounts[model.TokenA]),
		zap.Stringer("amount_b", amounts[model.TokenB]),
	)
	return amounts, nil
}

// RemoveLiquidityProportional burns bptAmountIn and returns the
// proportional raw amounts of both tokens, rounded down.
func (v *Vault) RemoveLiquidityProportional(bptAmountIn *uint256.Int, now uint64) (model.Balances, error) {
	if bptAmountIn == nil || bptAmountIn.IsZero() {
		return model.Balances{}, fmt.Errorf("remove liquidity: %w", ErrAmountGivenZero)
	}
	if !v.pool.Initialized() {
		return model.Balances{}, fmt.Errorf("remove liquidity: %w", pool.ErrNotInitialized)
	}
	if bptAmountIn.Gt(v.totalSupply) {
		return model.Balances{}, fmt.Errorf("remove liquidity: %w: %s > %s", ErrInsufficientBpt, bptAmountIn, v.totalSupply)
	}

	var c fixedpoint.Calc
	amounts := model.NewBalances(
		c.MulDivDown(v.balances[model.TokenA], bptAmountIn, v.totalSupply),
		c.MulDivDown(v.balances[model.TokenB], bptAmountIn, v.totalSupply),
	)
	balances := model.NewBalances(
		c.Sub(v.balances[model.TokenA], amounts[model.TokenA]),
		c.Sub(v.balances[model.TokenB], amounts[model.TokenB]),
	)
	supply := c.Sub(v.totalSupply, bptAmountIn)
	scaled := v.scaledBalances(&c)
	if err := c.Err(); err != nil {
		return model.Balances{}, fmt.Errorf("remove liquidity: %w", err)
	}

	err := v.atomically(func() error {
		_, err := v.pool.RemoveLiquidityProportional(scaled, bptAmountIn, v.totalSupply, now)
		return err
	})
	if err != nil {
		return model.Balances{}, err
	}

	v.balances = balances
	v.totalSupply = supply
	v.logger.Debug("remove liquidity",
		zap.Stringer("bpt", bptAmountIn),
		zap.Stringer("amount_a", amounts[model.TokenA]),
		zap.Stringer("amount_b", amounts[model.TokenB]),
	)
	return amounts, nil
}
