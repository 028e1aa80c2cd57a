package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

// InitializeResult describes a freshly initialized pool.
type InitializeResult struct {
	VirtualBalances      model.Balances
	FourthRootPriceRatio *uint256.Int
}

// Initialize seeds the pool for a price range and target price. The supplied
// real balances must match the theoretical balance ratio within the
// configured tolerance; virtual balances are scaled to them.
func (p *Pool) Initialize(balances model.Balances, minPrice, maxPrice, targetPrice *uint256.Int, now uint64) (InitializeResult, error) {
	res, err := p.initialize(balances, minPrice, maxPrice, targetPrice, now)
	if err != nil {
		return InitializeResult{}, fmt.Errorf("initialize: %w", err)
	}
	return res, nil
}

func (p *Pool) initialize(balances model.Balances, minPrice, maxPrice, targetPrice *uint256.Int, now uint64) (InitializeResult, error) {
	if p.initialized {
		return InitializeResult{}, ErrAlreadyInitialized
	}
	if err := p.checkInputs(balances, now); err != nil {
		return InitializeResult{}, err
	}

	theoretical, err := reclamm.ComputeTheoreticalPriceRatioAndBalances(minPrice, maxPrice, targetPrice, p.cfg.InitialBalanceA)
	if err != nil {
		return InitializeResult{}, err
	}
	if theoretical.FourthRootPriceRatio.Gt(p.cfg.MaxFourthRootPriceRatio) {
		return InitializeResult{}, fmt.Errorf("%w: %s", reclamm.ErrInvalidFourthRootPriceRatio, theoretical.FourthRootPriceRatio)
	}

	scale, err := p.initialScale(balances, theoretical.Balances)
	if err != nil {
		return InitializeResult{}, err
	}

	var c fixedpoint.Calc
	virtual := model.NewBalances(
		c.MulDown(theoretical.VirtualBalances[model.TokenA], scale),
		c.MulDown(theoretical.VirtualBalances[model.TokenB], scale),
	)
	if err := c.Err(); err != nil {
		return InitializeResult{}, err
	}
	if virtual[model.TokenA].IsZero() || virtual[model.TokenB].IsZero() {
		return InitializeResult{}, reclamm.ErrZeroVirtualBalance
	}

	q := theoretical.FourthRootPriceRatio
	state := model.PoolState{
		LastVirtualBalances: virtual,
		LastTimestamp:       now,
		CenterednessMargin:  p.cfg.InitialCenterednessMargin.Clone(),
		DailyPriceShiftBase: reclamm.ToDailyPriceShiftBase(p.cfg.InitialDailyPriceShiftExponent),
		PriceRatioState: model.PriceRatioState{
			StartFourthRootPriceRatio: q.Clone(),
			EndFourthRootPriceRatio:   q.Clone(),
			StartTime:                 now,
			EndTime:                   now,
		},
	}

	centeredness, _, err := reclamm.ComputeCenteredness(balances, virtual)
	if err != nil {
		return InitializeResult{}, err
	}
	if centeredness.Lt(state.CenterednessMargin) {
		return InitializeResult{}, fmt.Errorf("%w: %s below margin %s", reclamm.ErrPoolCenterednessTooLow, centeredness, state.CenterednessMargin)
	}

	p.commit(state)
	p.initialized = true
	p.logger.Info("pool initialized",
		zap.Stringer("min_price", minPrice),
		zap.Stringer("max_price", maxPrice),
		zap.Stringer("target_price", targetPrice),
		zap.Stringer("fourth_root_price_ratio", q),
		zap.Stringer("virtual_a", virtual[model.TokenA]),
		zap.Stringer("virtual_b", virtual[model.TokenB]),
		zap.Uint64("ts", now),
	)
	return InitializeResult{VirtualBalances: virtual.Clone(), FourthRootPriceRatio: q.Clone()}, nil
}

// initialScale checks the real balance ratio against the theoretical one and
// returns the factor mapping theoretical balances onto the real ones.
func (p *Pool) initialScale(balances, theoretical model.Balances) (*uint256.Int, error) {
	var c fixedpoint.Calc
	a, b := model.TokenA, model.TokenB

	if theoretical[a].IsZero() {
		// Target at the top of the range: the pool holds only token B.
		if !balances[a].IsZero() || balances[b].IsZero() || theoretical[b].IsZero() {
			return nil, reclamm.ErrBalanceRatioExceedsTolerance
		}
		scale := c.DivDown(balances[b], theoretical[b])
		return scale, c.Err()
	}
	if balances[a].IsZero() {
		return nil, reclamm.ErrBalanceRatioExceedsTolerance
	}

	expected := c.DivDown(theoretical[b], theoretical[a])
	actual := c.DivDown(balances[b], balances[a])
	lower := c.MulDown(expected, c.Sub(fixedpoint.ONE, p.cfg.BalanceRatioTolerance))
	upper := c.MulUp(expected, c.Add(fixedpoint.ONE, p.cfg.BalanceRatioTolerance))
	scale := c.DivDown(balances[a], theoretical[a])
	if err := c.Err(); err != nil {
		return nil, err
	}
	if actual.Lt(lower) || actual.Gt(upper) {
		return nil, fmt.Errorf("%w: ratio %s expected %s", reclamm.ErrBalanceRatioExceedsTolerance, actual, expected)
	}
	return scale, nil
}
