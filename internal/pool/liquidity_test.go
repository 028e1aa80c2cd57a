package pool

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

// offCenterPool returns a pool after a 100 A swap so that spot price and
// centeredness are both away from one.
func offCenterPool(t *testing.T) (*Pool, model.Balances) {
	t.Helper()
	p, balances := newCenteredPool(t)
	res, err := p.Swap(SwapRequest{Kind: ExactIn, IndexIn: model.TokenA, IndexOut: model.TokenB, AmountGiven: fp("100"), Balances: balances}, t0)
	require.NoError(t, err)
	return p, res.Balances
}

func scaleBalances(t *testing.T, balances model.Balances, num, den *uint256.Int) model.Balances {
	t.Helper()
	var c fixedpoint.Calc
	out := model.NewBalances(
		c.MulDivDown(balances[model.TokenA], num, den),
		c.MulDivDown(balances[model.TokenB], num, den),
	)
	require.NoError(t, c.Err())
	return out
}

func TestAddLiquidityKeepsPriceAndCenteredness(t *testing.T) {
	p, balances := offCenterPool(t)
	supply := fp("1000")

	spotBefore, err := p.SpotPrice(balances, t0)
	require.NoError(t, err)
	centerBefore, aboveBefore, err := p.Centeredness(balances, t0)
	require.NoError(t, err)

	virtual, err := p.AddLiquidityProportional(balances, fp("100"), supply, t0)
	require.NoError(t, err)
	require.Equal(t, virtual, p.State().LastVirtualBalances)

	after := scaleBalances(t, balances, fp("1100"), supply)
	spotAfter, err := p.SpotPrice(after, t0)
	require.NoError(t, err)
	centerAfter, aboveAfter, err := p.Centeredness(after, t0)
	require.NoError(t, err)

	requireClose(t, spotBefore, spotAfter, "0.000000000001")
	requireClose(t, centerBefore, centerAfter, "0.000000000001")
	require.Equal(t, aboveBefore, aboveAfter)
}

func TestRemoveLiquidityKeepsPriceAndCenteredness(t *testing.T) {
	p, balances := offCenterPool(t)
	supply := fp("1000")

	spotBefore, err := p.SpotPrice(balances, t0)
	require.NoError(t, err)
	centerBefore, _, err := p.Centeredness(balances, t0)
	require.NoError(t, err)

	_, err = p.RemoveLiquidityProportional(balances, fp("250"), supply, t0)
	require.NoError(t, err)

	after := scaleBalances(t, balances, fp("750"), supply)
	spotAfter, err := p.SpotPrice(after, t0)
	require.NoError(t, err)
	centerAfter, _, err := p.Centeredness(after, t0)
	require.NoError(t, err)

	requireClose(t, spotBefore, spotAfter, "0.000000000001")
	requireClose(t, centerBefore, centerAfter, "0.000000000001")
}

func TestRemoveLiquidityTokenBalanceTooLow(t *testing.T) {
	p, balances := newCenteredPool(t)
	before := p.State()

	_, err := p.RemoveLiquidityProportional(balances, fp("1000"), fp("1000"), t0+60)
	require.ErrorIs(t, err, reclamm.ErrTokenBalanceTooLow)
	require.Equal(t, before, p.State())
}

func TestLiquidityInvalidBpt(t *testing.T) {
	p, balances := newCenteredPool(t)

	_, err := p.RemoveLiquidityProportional(balances, fp("1001"), fp("1000"), t0)
	require.ErrorIs(t, err, reclamm.ErrInvalidBptAmount)
	_, err = p.AddLiquidityProportional(balances, fp("0"), fp("1000"), t0)
	require.ErrorIs(t, err, reclamm.ErrInvalidBptAmount)
	_, err = p.AddLiquidityProportional(balances, fp("1"), fp("0"), t0)
	require.ErrorIs(t, err, reclamm.ErrInvalidBptAmount)
}
