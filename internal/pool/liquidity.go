package pool

import (
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

// AddLiquidityProportional scales virtual balances up by the share of supply
// minted, rounded down, so price and centeredness are unchanged.
func (p *Pool) AddLiquidityProportional(balances model.Balances, bptAmountOut, totalSupply *uint256.Int, now uint64) (model.Balances, error) {
	virtual, err := p.scaleLiquidity("add liquidity", balances, bptAmountOut, totalSupply, now, true)
	if err != nil {
		return model.Balances{}, fmt.Errorf("add liquidity: %w", err)
	}
	return virtual, nil
}

// RemoveLiquidityProportional scales virtual balances down by the share of
// supply burned, rounded up. Both remaining real balances must stay above
// the minimum token balance.
func (p *Pool) RemoveLiquidityProportional(balances model.Balances, bptAmountIn, totalSupply *uint256.Int, now uint64) (model.Balances, error) {
	virtual, err := p.scaleLiquidity("remove liquidity", balances, bptAmountIn, totalSupply, now, false)
	if err != nil {
		return model.Balances{}, fmt.Errorf("remove liquidity: %w", err)
	}
	return virtual, nil
}

func (p *Pool) scaleLiquidity(op string, balances model.Balances, bptAmount, totalSupply *uint256.Int, now uint64, add bool) (model.Balances, error) {
	if bptAmount == nil || totalSupply == nil || bptAmount.IsZero() || totalSupply.IsZero() {
		return model.Balances{}, reclamm.ErrInvalidBptAmount
	}
	if !add && bptAmount.Gt(totalSupply) {
		return model.Balances{}, fmt.Errorf("%w: %s exceeds supply %s", reclamm.ErrInvalidBptAmount, bptAmount, totalSupply)
	}

	state, err := p.begin(op, balances, now)
	if err != nil {
		return model.Balances{}, err
	}

	var c fixedpoint.Calc
	var factor *uint256.Int
	if add {
		factor = c.Add(fixedpoint.ONE, c.DivDown(bptAmount, totalSupply))
	} else {
		factor = c.Complement(c.DivUp(bptAmount, totalSupply))
		remaining := model.NewBalances(
			c.MulDown(balances[model.TokenA], factor),
			c.MulDown(balances[model.TokenB], factor),
		)
		if err := c.Err(); err != nil {
			return model.Balances{}, err
		}
		if err := minTokenBalance(remaining, p.cfg.MinTokenBalance); err != nil {
			return model.Balances{}, err
		}
	}

	virtual := model.NewBalances(
		c.MulDown(state.LastVirtualBalances[model.TokenA], factor),
		c.MulDown(state.LastVirtualBalances[model.TokenB], factor),
	)
	if err := c.Err(); err != nil {
		return model.Balances{}, err
	}
	if virtual[model.TokenA].IsZero() || virtual[model.TokenB].IsZero() {
		return model.Balances{}, reclamm.ErrZeroVirtualBalance
	}

	state.LastVirtualBalances = virtual
	p.commit(state)
	return virtual.Clone(), nil
}
