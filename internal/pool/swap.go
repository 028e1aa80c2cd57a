package pool

import (
	"fmt"

	"github.com/holiman/uint256"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

// SwapKind selects which side of a swap is given.
type SwapKind int

const (
	ExactIn SwapKind = iota
	ExactOut
)

func (k SwapKind) String() string {
	switch k {
	case ExactIn:
		return model.SwapExactIn
	case ExactOut:
		return model.SwapExactOut
	default:
		return fmt.Sprintf("SwapKind(%d)", int(k))
	}
}

// ParseSwapKind converts the wire name of a swap kind. The kind must be
// named explicitly.
func ParseSwapKind(s string) (SwapKind, error) {
	switch s {
	case model.SwapExactIn:
		return ExactIn, nil
	case model.SwapExactOut:
		return ExactOut, nil
	case "":
		return 0, fmt.Errorf("swap kind is required")
	default:
		return 0, fmt.Errorf("unknown swap kind %q", s)
	}
}

// SwapRequest is a swap against the current real balances, all scaled18.
type SwapRequest struct {
	Kind        SwapKind
	IndexIn     int
	IndexOut    int
	AmountGiven *uint256.Int
	Balances    model.Balances
}

// SwapResult carries the quote and the resulting balances.
type SwapResult struct {
	AmountIn        *uint256.Int
	AmountOut       *uint256.Int
	Balances        model.Balances
	VirtualBalances model.Balances
}

// AmountCalculated returns the side of the swap that was not given.
func (r SwapResult) AmountCalculated(kind SwapKind) *uint256.Int {
	if kind == ExactOut {
		return r.AmountIn
	}
	return r.AmountOut
}

// Swap refreshes virtual balances, quotes the swap and verifies the pool is
// left above the minimum token balance and centeredness floors.
func (p *Pool) Swap(req SwapRequest, now uint64) (SwapResult, error) {
	res, err := p.swap(req, now)
	if err != nil {
		return SwapResult{}, fmt.Errorf("swap: %w", err)
	}
	return res, nil
}

func (p *Pool) swap(req SwapRequest, now uint64) (SwapResult, error) {
	if req.AmountGiven == nil {
		return SwapResult{}, fmt.Errorf("amount given is required")
	}
	state, err := p.begin("swap", req.Balances, now)
	if err != nil {
		return SwapResult{}, err
	}
	virtual := state.LastVirtualBalances

	var amountIn, amountOut *uint256.Int
	switch req.Kind {
	case ExactIn:
		amountIn = req.AmountGiven.Clone()
		amountOut, err = reclamm.ComputeOutGivenIn(req.Balances, virtual, req.IndexIn, req.IndexOut, amountIn)
	case ExactOut:
		amountOut = req.AmountGiven.Clone()
		amountIn, err = reclamm.ComputeInGivenOut(req.Balances, virtual, req.IndexIn, req.IndexOut, amountOut)
	default:
		err = fmt.Errorf("unknown swap kind %s", req.Kind)
	}
	if err != nil {
		return SwapResult{}, err
	}

	var c fixedpoint.Calc
	after := req.Balances.Clone()
	after[req.IndexIn] = c.Add(after[req.IndexIn], amountIn)
	after[req.IndexOut] = c.Sub(after[req.IndexOut], amountOut)
	if err := c.Err(); err != nil {
		return SwapResult{}, err
	}
	if after[req.IndexIn].Gt(p.cfg.MaxBalance) {
		return SwapResult{}, fmt.Errorf("%w: token %d balance %s", reclamm.ErrBalanceOutOfRange, req.IndexIn, after[req.IndexIn])
	}
	if after[req.IndexOut].Lt(p.cfg.MinTokenBalance) {
		return SwapResult{}, fmt.Errorf("%w: token %d balance %s", reclamm.ErrTokenBalanceTooLow, req.IndexOut, after[req.IndexOut])
	}

	centeredness, _, err := reclamm.ComputeCenteredness(after, virtual)
	if err != nil {
		return SwapResult{}, err
	}
	if centeredness.Lt(p.cfg.MinPoolCenteredness) {
		return SwapResult{}, fmt.Errorf("%w: %s", reclamm.ErrPoolCenterednessTooLow, centeredness)
	}

	p.commit(state)
	return SwapResult{
		AmountIn:        amountIn,
		AmountOut:       amountOut,
		Balances:        after,
		VirtualBalances: virtual.Clone(),
	}, nil
}
