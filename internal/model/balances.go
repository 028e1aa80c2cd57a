package model

import "github.com/holiman/uint256"

// Token indexes of a two-token pool.
const (
	TokenA = 0
	TokenB = 1
)

// Balances holds one amount per token, indexed by TokenA and TokenB.
// Amounts encode as decimal strings in JSON.
type Balances [2]*uint256.Int

// NewBalances builds a Balances pair from two amounts.
func NewBalances(a, b *uint256.Int) Balances {
	return Balances{a, b}
}

// Clone returns a deep copy.
func (b Balances) Clone() Balances {
	var out Balances
	for i, v := range b {
		if v != nil {
			out[i] = v.Clone()
		}
	}
	return out
}

// Complete reports whether both amounts are set.
func (b Balances) Complete() bool {
	return b[TokenA] != nil && b[TokenB] != nil
}

// Other returns the index of the token that is not i.
func Other(i int) int {
	return 1 - i
}
