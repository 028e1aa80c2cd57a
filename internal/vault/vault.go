// Package vault hosts a pool the way an on-chain vault would: it owns the
// raw token balances and BPT supply, applies decimal and rate scaling,
// charges the swap fee and keeps every operation atomic.
package vault

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/pool"
	"reclamm/internal/reclamm"
)

type Vault struct {
	tokens      [2]model.TokenMeta
	scalers     [2]scaler
	balances    model.Balances
	totalSupply *uint256.Int
	swapFee     *uint256.Int
	pool        *pool.Pool
	logger      *zap.Logger
}

// New creates a vault with an uninitialized pool.
func New(tokens [2]model.TokenMeta, cfg pool.PoolConfig, swapFeePercentage *uint256.Int, logger *zap.Logger) (*Vault, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := pool.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	v := &Vault{
		tokens:      tokens,
		balances:    model.NewBalances(new(uint256.Int), new(uint256.Int)),
		totalSupply: new(uint256.Int),
		pool:        p,
		logger:      logger,
	}
	for i, token := range tokens {
		if v.scalers[i], err = newScaler(token); err != nil {
			return nil, err
		}
	}
	if swapFeePercentage == nil {
		swapFeePercentage = cfg.MinSwapFeePercentage
	}
	if err := v.checkSwapFee(swapFeePercentage); err != nil {
		return nil, err
	}
	v.swapFee = swapFeePercentage.Clone()
	return v, nil
}

// Restore rebuilds a vault from persisted state.
func Restore(cfg pool.PoolConfig, state model.VaultState, logger *zap.Logger) (*Vault, error) {
	v, err := New(state.Tokens, cfg, state.SwapFeePercentage, logger)
	if err != nil {
		return nil, fmt.Errorf("restore vault: %w", err)
	}
	if !state.Initialized {
		return v, nil
	}
	if !state.Balances.Complete() || state.TotalSupply == nil {
		return nil, fmt.Errorf("restore vault: balances and total supply are required")
	}
	if v.pool, err = pool.Restore(cfg, state.Pool, v.logger); err != nil {
		return nil, fmt.Errorf("restore vault: %w", err)
	}
	v.balances = state.Balances.Clone()
	v.totalSupply = state.TotalSupply.Clone()
	return v, nil
}

// State returns a copy of the vault and pool state for persistence.
func (v *Vault) State() model.VaultState {
	state := model.VaultState{
		Tokens:            v.tokens,
		Balances:          v.balances.Clone(),
		TotalSupply:       v.totalSupply.Clone(),
		SwapFeePercentage: v.swapFee.Clone(),
		Initialized:       v.pool.Initialized(),
		Pool:              v.pool.State(),
	}
	return state.Clone()
}

func (v *Vault) Pool() *pool.Pool {
	return v.pool
}

func (v *Vault) Tokens() [2]model.TokenMeta {
	return v.tokens
}

// Balances returns the raw token balances held for the pool.
func (v *Vault) Balances() model.Balances {
	return v.balances.Clone()
}

// ScaledBalances returns the balances as the pool sees them.
func (v *Vault) ScaledBalances() (model.Balances, error) {
	var c fixedpoint.Calc
	scaled := v.scaledBalances(&c)
	return scaled, c.Err()
}

func (v *Vault) scaledBalances(c *fixedpoint.Calc) model.Balances {
	return model.NewBalances(
		v.scalers[model.TokenA].toScaled18Down(c, v.balances[model.TokenA]),
		v.scalers[model.TokenB].toScaled18Down(c, v.balances[model.TokenB]),
	)
}

func (v *Vault) TotalSupply() *uint256.Int {
	return v.totalSupply.Clone()
}

func (v *Vault) SwapFeePercentage() *uint256.Int {
	return v.swapFee.Clone()
}

// Snapshot returns the pool views at now over the current balances.
func (v *Vault) Snapshot(now uint64) (model.PoolSnapshot, error) {
	scaled, err := v.ScaledBalances()
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	return v.pool.Snapshot(scaled, now)
}

// atomically runs fn and restores the pool state if it fails.
func (v *Vault) atomically(fn func() error) error {
	cp := v.pool.Checkpoint()
	if err := fn(); err != nil {
		v.pool.Rollback(cp)
		return err
	}
	return nil
}

// Initialize deposits the initial raw amounts, initializes the pool and
// mints BPT equal to the invariant.
func (v *Vault) Initialize(amounts model.Balances, minPrice, maxPrice, targetPrice *uint256.Int, now uint64) (*uint256.Int, error) {
	if !amounts.Complete() {
		return nil, fmt.Errorf("initialize: both amounts are required")
	}

	var bpt *uint256.Int
	err := v.atomically(func() error {
		var c fixedpoint.Calc
		scaled := model.NewBalances(
			v.scalers[model.TokenA].toScaled18Down(&c, amounts[model.TokenA]),
			v.scalers[model.TokenB].toScaled18Down(&c, amounts[model.TokenB]),
		)
		if err := c.Err(); err != nil {
			return err
		}
		if _, err := v.pool.Initialize(scaled, minPrice, maxPrice, targetPrice, now); err != nil {
			return err
		}
		invariant, err := v.pool.ComputeInvariant(scaled, reclamm.RoundDown, now)
		if err != nil {
			return err
		}
		if invariant.IsZero() {
			return fmt.Errorf("initialize: %w", reclamm.ErrInvalidBptAmount)
		}
		bpt = invariant
		return nil
	})
	if err != nil {
		return nil, err
	}

	v.balances = amounts.Clone()
	v.totalSupply = bpt.Clone()
	v.logger.Info("vault initialized",
		zap.Stringer("amount_a", amounts[model.TokenA]),
		zap.Stringer("amount_b", amounts[model.TokenB]),
		zap.Stringer("bpt", bpt),
	)
	return bpt, nil
}

func (v *Vault) checkSwapFee(fee *uint256.Int) error {
	cfg := v.pool.Config()
	if fee.Lt(cfg.MinSwapFeePercentage) || fee.Gt(cfg.MaxSwapFeePercentage) {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrSwapFeeOutOfBounds, fee, cfg.MinSwapFeePercentage, cfg.MaxSwapFeePercentage)
	}
	return nil
}

// SetSwapFeePercentage replaces the swap fee charged on the input token.
func (v *Vault) SetSwapFeePercentage(fee *uint256.Int) error {
	if fee == nil {
		return fmt.Errorf("set swap fee: %w", ErrSwapFeeOutOfBounds)
	}
	if err := v.checkSwapFee(fee); err != nil {
		return fmt.Errorf("set swap fee: %w", err)
	}
	v.swapFee = fee.Clone()
	return nil
}
