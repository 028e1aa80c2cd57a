package reclamm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
)

func fp(s string) *uint256.Int {
	return fixedpoint.MustParse(s)
}

func pair(a, b string) model.Balances {
	return model.NewBalances(fp(a), fp(b))
}

// requireClose fails unless got is within relTol (scaled18) of want.
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
	require.Truef(t, !diff.Gt(limit), "want %s got %s (diff %s > %s)",
		fixedpoint.Format(want), fixedpoint.Format(got), diff, limit)
}

// centeredPool returns the balances of a pool initialized with min 0.5,
// max 2 and target 1 holding 1000 of each token.
func centeredPool(t *testing.T) (model.Balances, model.Balances, *uint256.Int) {
	t.Helper()
	theoretical, err := ComputeTheoreticalPriceRatioAndBalances(fp("0.5"), fp("2"), fp("1"), fixedpoint.New(1_000_000))
	require.NoError(t, err)

	var c fixedpoint.Calc
	balances := pair("1000", "1000")
	scale := c.DivDown(balances[model.TokenA], theoretical.Balances[model.TokenA])
	virtual := model.NewBalances(
		c.MulDown(theoretical.VirtualBalances[model.TokenA], scale),
		c.MulDown(theoretical.VirtualBalances[model.TokenB], scale),
	)
	require.NoError(t, c.Err())
	return balances, virtual, theoretical.FourthRootPriceRatio
}
