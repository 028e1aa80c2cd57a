package pool

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

func TestSwapExactIn(t *testing.T) {
	p, balances := newCenteredPool(t)

	res, err := p.Swap(SwapRequest{Kind: ExactIn, IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: fp("10"), Balances: balances}, t0+60)
	require.NoError(t, err)
	require.Equal(t, fp("10"), res.AmountIn)
	requireClose(t, fp("9.970796214027405"), res.AmountOut, "0.000000001")
	require.Equal(t, res.AmountOut, res.AmountCalculated(ExactIn))
	require.Equal(t, fp("1010"), res.Balances[model.TokenA])
	require.Equal(t, new(uint256.Int).Sub(fp("1000"), res.AmountOut), res.Balances[model.TokenB])

	// the caller's balances are not modified
	require.Equal(t, fp("1000"), balances[model.TokenA])
	require.Equal(t, uint64(t0+60), p.State().LastTimestamp)
}

func TestSwapExactOut(t *testing.T) {
	p, balances := newCenteredPool(t)

	res, err := p.Swap(SwapRequest{Kind: ExactOut, IndexIn: model.TokenB, IndexOut: model.TokenA, AmountGiven: fp("10"), Balances: balances}, t0)
	require.NoError(t, err)
	require.Equal(t, fp("10"), res.AmountOut)
	require.True(t, res.AmountIn.Gt(fp("10")))
	require.Equal(t, res.AmountIn, res.AmountCalculated(ExactOut))
}

func TestSwapLeavesMinimumBalance(t *testing.T) {
	p, balances := newCenteredPool(t)
	before := p.State()

	amountOut := new(uint256.Int).Sub(fp("1000"), uint256.NewInt(5e13))
	_, err := p.Swap(SwapRequest{Kind: ExactOut, IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: amountOut, Balances: balances}, t0+60)
	require.ErrorIs(t, err, reclamm.ErrTokenBalanceTooLow)
	require.Equal(t, before, p.State())
}

func TestSwapAmountOutBiggerThanBalance(t *testing.T) {
	p, balances := newCenteredPool(t)

	_, err := p.Swap(SwapRequest{Kind: ExactOut, IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: fp("1000"), Balances: balances}, t0)
	require.ErrorIs(t, err, reclamm.ErrAmountOutBiggerThanBalance)
}

func TestSwapInvalidRequest(t *testing.T) {
	p, balances := newCenteredPool(t)

	_, err := p.Swap(SwapRequest{Kind: ExactIn, IndexIn: model.TokenA, IndexOut: model.TokenA, AmountGiven: fp("1"), Balances: balances}, t0)
	require.ErrorIs(t, err, reclamm.ErrInvalidTokenIndex)

	_, err = p.Swap(SwapRequest{Kind: ExactIn, IndexIn: model.TokenA, IndexOut: model.TokenB, Balances: balances}, t0)
	require.Error(t, err)

	_, err = p.Swap(SwapRequest{Kind: SwapKind(7), IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: fp("1"), Balances: balances}, t0)
	require.Error(t, err)
}

func TestSwapSequenceInvariantNonDecreasing(t *testing.T) {
	p, balances := newCenteredPool(t)
	rng := rand.New(rand.NewSource(1))

	last, err := p.ComputeInvariant(balances, reclamm.RoundDown, t0)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		in := rng.Intn(2)
		kind := ExactIn
		if rng.Intn(2) == 1 {
			kind = ExactOut
		}
		amount := new(uint256.Int).Mul(uint256.NewInt(uint64(rng.Int63n(40_000))+1), uint256.NewInt(1e15))

		res, err := p.Swap(SwapRequest{Kind: kind, IndexIn: in, IndexOut: model.Other(in), AmountGiven: amount, Balances: balances}, t0)
		if err != nil {
			continue
		}
		balances = res.Balances

		current, err := p.ComputeInvariant(balances, reclamm.RoundDown, t0)
		require.NoError(t, err)
		require.False(t, current.Lt(last), "swap %d decreased invariant", i)
		last = current
	}
}

func TestOutOfRangePoolRecentersOverTime(t *testing.T) {
	p, balances := newCenteredPool(t)

	// push most of B out of the pool
	res, err := p.Swap(SwapRequest{Kind: ExactOut, IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: fp("900"), Balances: balances}, t0)
	require.NoError(t, err)
	balances = res.Balances

	within, err := p.IsWithinTargetRange(balances, t0)
	require.NoError(t, err)
	require.False(t, within)

	c0, above, err := p.Centeredness(balances, t0)
	require.NoError(t, err)
	require.True(t, above)
	c1, _, err := p.Centeredness(balances, t0+86400)
	require.NoError(t, err)
	require.True(t, c1.Gt(c0))

	r0, err := p.CurrentPriceRatio(balances, t0)
	require.NoError(t, err)
	r1, err := p.CurrentPriceRatio(balances, t0+86400)
	require.NoError(t, err)
	requireClose(t, r0, r1, "0.000001")

	// any state-changing operation commits the refreshed virtual balances
	_, err = p.SetDailyPriceShiftExponent(balances, fixedpoint.ONE, t0+86400)
	require.NoError(t, err)
	stored, _, err := reclamm.ComputeCenteredness(balances, p.State().LastVirtualBalances)
	require.NoError(t, err)
	require.Equal(t, c1, stored)
}

func TestSwapRejectsCenterednessBelowFloor(t *testing.T) {
	cfg := DefaultPoolConfig()
	cfg.MinPoolCenteredness = fp("0.5")
	p, err := New(cfg, nil)
	require.NoError(t, err)
	balances := pair("1000", "1000")
	_, err = p.Initialize(balances, fp("0.5"), fp("2"), fp("1"), t0)
	require.NoError(t, err)
	before := p.State()

	_, err = p.Swap(SwapRequest{Kind: ExactIn, IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: fp("900"), Balances: balances}, t0+60)
	require.ErrorIs(t, err, reclamm.ErrPoolCenterednessTooLow)
	require.Equal(t, before, p.State())

	_, err = p.Swap(SwapRequest{Kind: ExactIn, IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: fp("10"), Balances: balances}, t0+60)
	require.NoError(t, err)
	require.Equal(t, uint64(t0+60), p.State().LastTimestamp)
}

func TestParseSwapKind(t *testing.T) {
	k, err := ParseSwapKind("exact_out")
	require.NoError(t, err)
	require.Equal(t, ExactOut, k)
	require.Equal(t, "exact_out", k.String())

	k, err = ParseSwapKind("exact_in")
	require.NoError(t, err)
	require.Equal(t, ExactIn, k)

	_, err = ParseSwapKind("")
	require.Error(t, err)

	_, err = ParseSwapKind("sideways")
	require.Error(t, err)
}

func TestSwapMaxBalance(t *testing.T) {
	cfg := DefaultPoolConfig()
	cfg.MaxBalance = fixedpoint.New(1005)
	p, err := New(cfg, nil)
	require.NoError(t, err)
	balances := pair("1000", "1000")
	_, err = p.Initialize(balances, fp("0.5"), fp("2"), fp("1"), t0)
	require.NoError(t, err)

	_, err = p.Swap(SwapRequest{Kind: ExactIn, IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: fp("10"), Balances: balances}, t0)
	require.ErrorIs(t, err, reclamm.ErrBalanceOutOfRange)
}
