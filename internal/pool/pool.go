// Package pool implements the pool state machine: initialization, swaps,
// proportional liquidity and parameter changes over a persistent PoolState.
package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

// Pool holds the state of a single pool. Operations are not safe for
// concurrent use; the host serializes calls.
type Pool struct {
	cfg         PoolConfig
	state       model.PoolState
	initialized bool
	logger      *zap.Logger
}

// Checkpoint captures pool state for rollback by the host.
type Checkpoint struct {
	state       model.PoolState
	initialized bool
}

// New creates an uninitialized pool.
func New(cfg PoolConfig, logger *zap.Logger) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{cfg: cfg, logger: logger}, nil
}

// Restore creates an initialized pool from persisted state.
func Restore(cfg PoolConfig, state model.PoolState, logger *zap.Logger) (*Pool, error) {
	p, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := validateState(state); err != nil {
		return nil, fmt.Errorf("restore pool: %w", err)
	}
	p.state = state.Clone()
	p.initialized = true
	return p, nil
}

func validateState(state model.PoolState) error {
	switch {
	case !state.LastVirtualBalances.Complete():
		return fmt.Errorf("virtual balances missing")
	case state.LastVirtualBalances[model.TokenA].IsZero() || state.LastVirtualBalances[model.TokenB].IsZero():
		return reclamm.ErrZeroVirtualBalance
	case state.CenterednessMargin == nil:
		return fmt.Errorf("centeredness margin missing")
	case state.DailyPriceShiftBase == nil:
		return fmt.Errorf("daily price shift base missing")
	case state.PriceRatioState.StartFourthRootPriceRatio == nil || state.PriceRatioState.EndFourthRootPriceRatio == nil:
		return fmt.Errorf("price ratio state missing")
	case state.PriceRatioState.StartTime > state.PriceRatioState.EndTime:
		return reclamm.ErrInvalidStartTime
	}
	return nil
}

// Config returns the pool limits.
func (p *Pool) Config() PoolConfig {
	return p.cfg
}

// Initialized reports whether Initialize has succeeded.
func (p *Pool) Initialized() bool {
	return p.initialized
}

// State returns a copy of the persistent state.
func (p *Pool) State() model.PoolState {
	return p.state.Clone()
}

// Checkpoint returns a copy of the current state for a later Rollback.
func (p *Pool) Checkpoint() Checkpoint {
	return Checkpoint{state: p.state.Clone(), initialized: p.initialized}
}

// Rollback restores a checkpoint taken with Checkpoint.
func (p *Pool) Rollback(cp Checkpoint) {
	p.state = cp.state
	p.initialized = cp.initialized
}

func (p *Pool) checkInputs(balances model.Balances, now uint64) error {
	if !balances.Complete() {
		return fmt.Errorf("%w: missing balance", reclamm.ErrBalanceOutOfRange)
	}
	for i, b := range balances {
		if b.Gt(p.cfg.MaxBalance) {
			return fmt.Errorf("%w: token %d balance %s", reclamm.ErrBalanceOutOfRange, i, b)
		}
	}
	if now > p.cfg.MaxTimestamp {
		return fmt.Errorf("%w: %d", reclamm.ErrTimestampOutOfRange, now)
	}
	return nil
}

// begin validates inputs and returns a working copy of the state with
// virtual balances refreshed to now.
func (p *Pool) begin(op string, balances model.Balances, now uint64) (model.PoolState, error) {
	if !p.initialized {
		return model.PoolState{}, ErrNotInitialized
	}
	if err := p.checkInputs(balances, now); err != nil {
		return model.PoolState{}, err
	}

	state := p.state.Clone()
	update, err := reclamm.ComputeCurrentVirtualBalances(balances, state, now)
	if err != nil {
		return model.PoolState{}, err
	}
	if update.Changed {
		p.logger.Debug("virtual balances updated",
			zap.String("op", op),
			zap.Bool("price_ratio_update", update.PriceRatioUpdated),
			zap.Bool("range_shift", update.RangeShifted),
			zap.Uint64("elapsed", now-state.LastTimestamp),
			zap.Stringer("virtual_a", update.VirtualBalances[model.TokenA]),
			zap.Stringer("virtual_b", update.VirtualBalances[model.TokenB]),
		)
		state.LastVirtualBalances = update.VirtualBalances
	}
	state.LastTimestamp = now
	return state, nil
}

func (p *Pool) commit(state model.PoolState) {
	p.state = state
}

// view refreshes virtual balances without touching the stored state.
func (p *Pool) view(balances model.Balances, now uint64) (model.PoolState, error) {
	return p.begin("view", balances, now)
}

func minTokenBalance(balances model.Balances, floor *uint256.Int) error {
	for i, b := range balances {
		if b.Lt(floor) {
			return fmt.Errorf("%w: token %d balance %s", reclamm.ErrTokenBalanceTooLow, i, b)
		}
	}
	return nil
}
