package model

import "github.com/holiman/uint256"

// VaultState is the persisted state of a simulated vault and its pool.
type VaultState struct {
	Tokens            [2]TokenMeta `json:"tokens"`
	Balances          Balances     `json:"balances"`
	TotalSupply       *uint256.Int `json:"total_supply"`
	SwapFeePercentage *uint256.Int `json:"swap_fee_percentage"`
	Initialized       bool         `json:"initialized"`
	Pool              PoolState    `json:"pool"`
	// ReplaySeq is the last input line processed by the replay runner.
	ReplaySeq int    `json:"replay_seq,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Clone returns a deep copy.
func (s VaultState) Clone() VaultState {
	out := s
	for i := range s.Tokens {
		if s.Tokens[i].Rate != nil {
			out.Tokens[i].Rate = s.Tokens[i].Rate.Clone()
		}
	}
	out.Balances = s.Balances.Clone()
	if s.TotalSupply != nil {
		out.TotalSupply = s.TotalSupply.Clone()
	}
	if s.SwapFeePercentage != nil {
		out.SwapFeePercentage = s.SwapFeePercentage.Clone()
	}
	out.Pool = s.Pool.Clone()
	return out
}
