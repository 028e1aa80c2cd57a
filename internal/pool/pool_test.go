package pool

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

const t0 = 1_700_000_000

func fp(s string) *uint256.Int {
	return fixedpoint.MustParse(s)
}

func pair(a, b string) model.Balances {
	return model.NewBalances(fp(a), fp(b))
}

func requireClose(t *testing.T, want, got *uint256.Int, relTol string) {
	t.Helper()
	var c fixedpoint.Calc
	diff := new(uint256.Int)
	if got.Gt(want) {
		diff.Sub(got, want)
	} else {
		diff.Sub(want, got)
	}
	limit := c.MulUp(want, fp(relTol))
	require.NoError(t, c.Err())
	require.Truef(t, !diff.Gt(limit), "want %s got %s", fixedpoint.Format(want), fixedpoint.Format(got))
}

// newCenteredPool initializes a pool over [0.5, 2] at price 1 holding 1000
// of each token.
func newCenteredPool(t *testing.T) (*Pool, model.Balances) {
	t.Helper()
	p, err := New(DefaultPoolConfig(), nil)
	require.NoError(t, err)

	balances := pair("1000", "1000")
	_, err = p.Initialize(balances, fp("0.5"), fp("2"), fp("1"), t0)
	require.NoError(t, err)
	return p, balances
}

func TestInitializeCenteredPool(t *testing.T) {
	p, err := New(DefaultPoolConfig(), nil)
	require.NoError(t, err)
	require.False(t, p.Initialized())

	res, err := p.Initialize(pair("1000", "1000"), fp("0.5"), fp("2"), fp("1"), t0)
	require.NoError(t, err)
	require.True(t, p.Initialized())

	require.Equal(t, fp("1.414213562373095048"), res.FourthRootPriceRatio)
	require.Equal(t, fp("2414.213562373095"), res.VirtualBalances[model.TokenA])
	require.Equal(t, fp("2414.213562373095"), res.VirtualBalances[model.TokenB])

	state := p.State()
	require.Equal(t, uint64(t0), state.LastTimestamp)
	require.Equal(t, fp("0.2"), state.CenterednessMargin)
	require.Equal(t, res.FourthRootPriceRatio, state.PriceRatioState.StartFourthRootPriceRatio)
	require.Equal(t, res.FourthRootPriceRatio, state.PriceRatioState.EndFourthRootPriceRatio)
	require.Equal(t, fp("0.999999999999955864"), p.DailyPriceShiftExponent())

	snap, err := p.Snapshot(pair("1000", "1000"), t0)
	require.NoError(t, err)
	require.Equal(t, fixedpoint.ONE, snap.SpotPrice)
	require.Equal(t, fixedpoint.ONE, snap.Centeredness)
	require.True(t, snap.WithinTargetRange)
	requireClose(t, fp("0.5"), snap.MinPrice, "0.000000000001")
	requireClose(t, fp("2"), snap.MaxPrice, "0.000000000001")
	requireClose(t, fp("4"), snap.PriceRatio, "0.000000000001")
}

func TestInitializeTwice(t *testing.T) {
	p, balances := newCenteredPool(t)
	_, err := p.Initialize(balances, fp("0.5"), fp("2"), fp("1"), t0)
	require.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestInitializeBalanceRatioTolerance(t *testing.T) {
	p, err := New(DefaultPoolConfig(), nil)
	require.NoError(t, err)

	_, err = p.Initialize(pair("1000", "1001"), fp("0.5"), fp("2"), fp("1"), t0)
	require.ErrorIs(t, err, reclamm.ErrBalanceRatioExceedsTolerance)
	require.False(t, p.Initialized())

	_, err = p.Initialize(pair("1000", "1000.01"), fp("0.5"), fp("2"), fp("1"), t0)
	require.NoError(t, err)
}

func TestInitializeInvalidPrices(t *testing.T) {
	p, err := New(DefaultPoolConfig(), nil)
	require.NoError(t, err)

	_, err = p.Initialize(pair("1000", "1000"), fp("2"), fp("0.5"), fp("1"), t0)
	require.ErrorIs(t, err, reclamm.ErrInvalidPrice)
}

func TestInitializeCenterednessTooLow(t *testing.T) {
	theoretical, err := reclamm.ComputeTheoreticalPriceRatioAndBalances(fp("0.5"), fp("2"), fp("0.55"), fixedpoint.New(1_000_000))
	require.NoError(t, err)

	thousand := uint256.NewInt(1000)
	balances := model.NewBalances(
		new(uint256.Int).Div(theoretical.Balances[model.TokenA], thousand),
		new(uint256.Int).Div(theoretical.Balances[model.TokenB], thousand),
	)

	p, err := New(DefaultPoolConfig(), nil)
	require.NoError(t, err)
	_, err = p.Initialize(balances, fp("0.5"), fp("2"), fp("0.55"), t0)
	require.ErrorIs(t, err, reclamm.ErrPoolCenterednessTooLow)
	require.False(t, p.Initialized())
}

func TestNotInitialized(t *testing.T) {
	p, err := New(DefaultPoolConfig(), nil)
	require.NoError(t, err)
	balances := pair("1000", "1000")

	_, err = p.Swap(SwapRequest{Kind: ExactIn, IndexIn: 0, IndexOut: 1, AmountGiven: fp("1"), Balances: balances}, t0)
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.AddLiquidityProportional(balances, fp("1"), fp("10"), t0)
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.SpotPrice(balances, t0)
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.CurrentFourthRootPriceRatio(t0)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestRejectsTimestampBeforeLastUpdate(t *testing.T) {
	p, balances := newCenteredPool(t)
	_, err := p.SpotPrice(balances, t0-1)
	require.ErrorIs(t, err, reclamm.ErrTimestampOutOfRange)
}

func TestRestore(t *testing.T) {
	p, balances := newCenteredPool(t)

	restored, err := Restore(p.Config(), p.State(), nil)
	require.NoError(t, err)
	require.True(t, restored.Initialized())
	require.Equal(t, p.State(), restored.State())

	want, err := p.Snapshot(balances, t0+3600)
	require.NoError(t, err)
	got, err := restored.Snapshot(balances, t0+3600)
	require.NoError(t, err)
	require.Equal(t, want, got)

	state := p.State()
	state.LastVirtualBalances[model.TokenA] = new(uint256.Int)
	_, err = Restore(p.Config(), state, nil)
	require.ErrorIs(t, err, reclamm.ErrZeroVirtualBalance)
}

func TestViewsDoNotMutateState(t *testing.T) {
	p, _ := newCenteredPool(t)
	before := p.State()

	offCenter := pair("50", "1000")
	_, err := p.Snapshot(offCenter, t0+86400)
	require.NoError(t, err)
	virtual, changed, err := p.CurrentVirtualBalances(offCenter, t0+86400)
	require.NoError(t, err)
	require.True(t, changed)
	require.NotEqual(t, before.LastVirtualBalances, virtual)

	require.Equal(t, before, p.State())
}

func TestCheckpointRollback(t *testing.T) {
	p, balances := newCenteredPool(t)
	cp := p.Checkpoint()
	before := p.State()

	_, err := p.Swap(SwapRequest{Kind: ExactIn, IndexIn: 0, IndexOut: 1, AmountGiven: fp("10"), Balances: balances}, t0+60)
	require.NoError(t, err)
	require.NotEqual(t, before, p.State())

	p.Rollback(cp)
	require.Equal(t, before, p.State())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultPoolConfig().Validate())

	cfg := DefaultPoolConfig()
	cfg.MinSwapFeePercentage = fp("0.2")
	require.Error(t, cfg.Validate())

	cfg = DefaultPoolConfig()
	cfg.MaxCenterednessMargin = fp("0.5")
	require.NoError(t, cfg.Validate())
	cfg.MaxCenterednessMargin = fp("0.500000000000000001")
	require.Error(t, cfg.Validate())

	cfg = DefaultPoolConfig()
	cfg.MaxCenterednessMargin = fp("0.9")
	_, err := New(cfg, nil)
	require.Error(t, err)

	cfg = DefaultPoolConfig()
	cfg.MaxBalance = nil
	_, err = New(cfg, nil)
	require.Error(t, err)
}
