package pool

import (
	"github.com/holiman/uint256"

	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

// CurrentVirtualBalances returns the virtual balances the pool would use at
// now and whether they differ from the stored ones.
func (p *Pool) CurrentVirtualBalances(balances model.Balances, now uint64) (model.Balances, bool, error) {
	if !p.initialized {
		return model.Balances{}, false, ErrNotInitialized
	}
	if err := p.checkInputs(balances, now); err != nil {
		return model.Balances{}, false, err
	}
	update, err := reclamm.ComputeCurrentVirtualBalances(balances, p.state, now)
	if err != nil {
		return model.Balances{}, false, err
	}
	return update.VirtualBalances, update.Changed, nil
}

// CurrentFourthRootPriceRatio returns the scheduled fourth root price ratio at now.
func (p *Pool) CurrentFourthRootPriceRatio(now uint64) (*uint256.Int, error) {
	if !p.initialized {
		return nil, ErrNotInitialized
	}
	return reclamm.ComputeFourthRootPriceRatio(now, p.state.PriceRatioState)
}

// CurrentPriceRange returns the minimum and maximum price of A in B at now.
func (p *Pool) CurrentPriceRange(balances model.Balances, now uint64) (*uint256.Int, *uint256.Int, error) {
	state, err := p.view(balances, now)
	if err != nil {
		return nil, nil, err
	}
	return reclamm.ComputePriceRange(balances, state.LastVirtualBalances)
}

// CurrentPriceRatio returns maxPrice / minPrice at now.
func (p *Pool) CurrentPriceRatio(balances model.Balances, now uint64) (*uint256.Int, error) {
	state, err := p.view(balances, now)
	if err != nil {
		return nil, err
	}
	return reclamm.ComputePriceRatio(balances, state.LastVirtualBalances)
}

// Centeredness returns the pool centeredness at now and whether it is above center.
func (p *Pool) Centeredness(balances model.Balances, now uint64) (*uint256.Int, bool, error) {
	state, err := p.view(balances, now)
	if err != nil {
		return nil, false, err
	}
	return reclamm.ComputeCenteredness(balances, state.LastVirtualBalances)
}

// IsWithinTargetRange reports whether centeredness is at least the margin at now.
func (p *Pool) IsWithinTargetRange(balances model.Balances, now uint64) (bool, error) {
	state, err := p.view(balances, now)
	if err != nil {
		return false, err
	}
	return reclamm.IsPoolWithinTargetRange(balances, state.LastVirtualBalances, state.CenterednessMargin)
}

// SpotPrice returns the marginal price of A in B at now.
func (p *Pool) SpotPrice(balances model.Balances, now uint64) (*uint256.Int, error) {
	state, err := p.view(balances, now)
	if err != nil {
		return nil, err
	}
	return reclamm.ComputeSpotPrice(balances, state.LastVirtualBalances)
}

// ComputeInvariant returns the invariant with virtual balances refreshed to now.
func (p *Pool) ComputeInvariant(balances model.Balances, rounding reclamm.Rounding, now uint64) (*uint256.Int, error) {
	state, err := p.view(balances, now)
	if err != nil {
		return nil, err
	}
	return reclamm.ComputeInvariant(balances, state.LastVirtualBalances, rounding)
}

// CenterednessMargin returns the stored margin.
func (p *Pool) CenterednessMargin() *uint256.Int {
	if p.state.CenterednessMargin == nil {
		return nil
	}
	return p.state.CenterednessMargin.Clone()
}

// DailyPriceShiftExponent returns the decay rate as a daily exponent.
func (p *Pool) DailyPriceShiftExponent() *uint256.Int {
	if p.state.DailyPriceShiftBase == nil {
		return nil
	}
	return reclamm.ToDailyPriceShiftExponent(p.state.DailyPriceShiftBase)
}

// Snapshot collects every derived view of the pool at now.
func (p *Pool) Snapshot(balances model.Balances, now uint64) (model.PoolSnapshot, error) {
	state, err := p.view(balances, now)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	virtual := state.LastVirtualBalances

	snap := model.PoolSnapshot{
		Timestamp:               now,
		Balances:                balances.Clone(),
		VirtualBalances:         virtual.Clone(),
		CenterednessMargin:      state.CenterednessMargin.Clone(),
		DailyPriceShiftExponent: reclamm.ToDailyPriceShiftExponent(state.DailyPriceShiftBase),
		PriceRatioState:         state.PriceRatioState.Clone(),
	}
	if snap.Invariant, err = reclamm.ComputeInvariant(balances, virtual, reclamm.RoundDown); err != nil {
		return model.PoolSnapshot{}, err
	}
	if snap.SpotPrice, err = reclamm.ComputeSpotPrice(balances, virtual); err != nil {
		return model.PoolSnapshot{}, err
	}
	if snap.MinPrice, snap.MaxPrice, err = reclamm.ComputePriceRange(balances, virtual); err != nil {
		return model.PoolSnapshot{}, err
	}
	if snap.PriceRatio, err = reclamm.ComputePriceRatio(balances, virtual); err != nil {
		return model.PoolSnapshot{}, err
	}
	if snap.FourthRootPriceRatio, err = reclamm.ComputeFourthRootPriceRatio(now, state.PriceRatioState); err != nil {
		return model.PoolSnapshot{}, err
	}
	if snap.Centeredness, snap.IsAboveCenter, err = reclamm.ComputeCenteredness(balances, virtual); err != nil {
		return model.PoolSnapshot{}, err
	}
	snap.WithinTargetRange = !snap.Centeredness.Lt(state.CenterednessMargin)
	return snap, nil
}
