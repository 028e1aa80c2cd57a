package pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/reclamm"
)

func TestSetPriceRatioTarget(t *testing.T) {
	p, balances := newCenteredPool(t)
	end, err := reclamm.FourthRoot(fp("6"))
	require.NoError(t, err)

	start, err := p.SetPriceRatioTarget(balances, end, t0+100, t0+100+86400, t0+100)
	require.NoError(t, err)
	require.Equal(t, fp("1.414213562373095048"), start)

	state := p.State()
	require.Equal(t, start, state.PriceRatioState.StartFourthRootPriceRatio)
	require.Equal(t, end, state.PriceRatioState.EndFourthRootPriceRatio)
	require.Equal(t, uint64(t0+100), state.PriceRatioState.StartTime)
	require.Equal(t, uint64(t0+100+86400), state.PriceRatioState.EndTime)

	q, err := p.CurrentFourthRootPriceRatio(t0 + 100 + 86400)
	require.NoError(t, err)
	require.Equal(t, end, q)

	ratio, err := p.CurrentPriceRatio(balances, t0+100+86400)
	require.NoError(t, err)
	requireClose(t, fp("6"), ratio, "0.000000001")

	mid, err := p.CurrentPriceRatio(balances, t0+100+43200)
	require.NoError(t, err)
	require.True(t, mid.Gt(fp("4")) && mid.Lt(fp("6")), "mid ratio %s", fixedpoint.Format(mid))
}

func TestSetPriceRatioTargetDurationTooShort(t *testing.T) {
	p, balances := newCenteredPool(t)
	before := p.State()
	end, err := reclamm.FourthRoot(fp("6"))
	require.NoError(t, err)

	_, err = p.SetPriceRatioTarget(balances, end, t0+10, t0+10+3600, t0+10)
	require.ErrorIs(t, err, reclamm.ErrPriceRatioUpdateDurationTooShort)
	require.Equal(t, before, p.State())
}

func TestSetPriceRatioTargetInvalidStartTime(t *testing.T) {
	p, balances := newCenteredPool(t)
	end, err := reclamm.FourthRoot(fp("6"))
	require.NoError(t, err)

	_, err = p.SetPriceRatioTarget(balances, end, t0+5, t0+5+86400, t0+10)
	require.ErrorIs(t, err, reclamm.ErrInvalidStartTime)
	_, err = p.SetPriceRatioTarget(balances, end, t0+86400, t0+10, t0+10)
	require.ErrorIs(t, err, reclamm.ErrInvalidStartTime)
}

func TestSetPriceRatioTargetTooFast(t *testing.T) {
	p, balances := newCenteredPool(t)
	end, err := reclamm.FourthRoot(fp("16"))
	require.NoError(t, err)

	// quadrupling the price ratio in a day exceeds the 2x daily limit
	_, err = p.SetPriceRatioTarget(balances, end, t0, t0+86400, t0)
	require.ErrorIs(t, err, reclamm.ErrPriceRatioUpdateTooFast)

	_, err = p.SetPriceRatioTarget(balances, end, t0, t0+3*86400, t0)
	require.NoError(t, err)
}

func TestSetPriceRatioTargetInvalidRatio(t *testing.T) {
	p, balances := newCenteredPool(t)
	_, err := p.SetPriceRatioTarget(balances, fixedpoint.ONE, t0, t0+86400, t0)
	require.ErrorIs(t, err, reclamm.ErrInvalidFourthRootPriceRatio)
}

func TestSetCenterednessMargin(t *testing.T) {
	p, balances := newCenteredPool(t)

	require.NoError(t, p.SetCenterednessMargin(balances, fp("0.5"), t0+1))
	require.Equal(t, fp("0.5"), p.CenterednessMargin())

	err := p.SetCenterednessMargin(balances, fp("0.6"), t0+1)
	require.ErrorIs(t, err, reclamm.ErrInvalidCenterednessMargin)
	require.Equal(t, fp("0.5"), p.CenterednessMargin())
}

func TestSetCenterednessMarginOutsideTargetRange(t *testing.T) {
	p, _ := newCenteredPool(t)

	err := p.SetCenterednessMargin(pair("50", "1000"), fp("0.01"), t0)
	require.ErrorIs(t, err, reclamm.ErrPoolOutsideTargetRange)
	require.Equal(t, fp("0.2"), p.CenterednessMargin())
}

func TestSetDailyPriceShiftExponent(t *testing.T) {
	p, balances := newCenteredPool(t)

	stored, err := p.SetDailyPriceShiftExponent(balances, fp("0.5"), t0+1)
	require.NoError(t, err)
	require.True(t, !stored.Gt(fp("0.5")))
	requireClose(t, fp("0.5"), stored, "0.000000001")
	require.Equal(t, stored, p.DailyPriceShiftExponent())

	_, err = p.SetDailyPriceShiftExponent(balances, fp("1.1"), t0+1)
	require.ErrorIs(t, err, reclamm.ErrDailyPriceShiftExponentTooHigh)
}
