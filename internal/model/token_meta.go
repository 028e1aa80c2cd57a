package model

import "github.com/holiman/uint256"

// TokenMeta captures ERC20 metadata and the scaling applied by the vault.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	// Rate is a scaled18 multiplier applied after decimal scaling; nil means 1.
	Rate *uint256.Int `json:"rate,omitempty"`
}
