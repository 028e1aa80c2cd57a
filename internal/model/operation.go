package model

import "github.com/holiman/uint256"

// Operation kinds understood by the replay runner.
const (
	OpInitialize       = "initialize"
	OpSwap             = "swap"
	OpAddLiquidity     = "add"
	OpRemoveLiquidity  = "remove"
	OpSetPriceRatio    = "set_price_ratio"
	OpSetMargin        = "set_margin"
	OpSetShiftExponent = "set_shift_exponent"
	OpSetSwapFee       = "set_swap_fee"
)

// Swap kinds.
const (
	SwapExactIn  = "exact_in"
	SwapExactOut = "exact_out"
)

// Result statuses.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
)

// Operation is one line of a replay input file. Token amounts are decimal
// strings in token units; prices, ratios and percentages are plain decimals.
type Operation struct {
	Op        string `json:"op"`
	Timestamp uint64 `json:"ts"`

	Amounts     []string `json:"amounts,omitempty"`
	MinPrice    string   `json:"min_price,omitempty"`
	MaxPrice    string   `json:"max_price,omitempty"`
	TargetPrice string   `json:"target_price,omitempty"`

	Kind    string `json:"kind,omitempty"`
	TokenIn int    `json:"token_in,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Limit   string `json:"limit,omitempty"`

	Bpt string `json:"bpt,omitempty"`

	EndPriceRatio string `json:"end_price_ratio,omitempty"`
	StartTime     uint64 `json:"start_time,omitempty"`
	EndTime       uint64 `json:"end_time,omitempty"`

	Value string `json:"value,omitempty"`
}

// OperationResult records the outcome of a replayed operation. Amounts are
// raw token units.
type OperationResult struct {
	Seq       int           `json:"seq"`
	Op        string        `json:"op"`
	Timestamp uint64        `json:"ts"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	AmountIn  *uint256.Int  `json:"amount_in,omitempty"`
	AmountOut *uint256.Int  `json:"amount_out,omitempty"`
	Amounts   *Balances     `json:"amounts,omitempty"`
	Bpt       *uint256.Int  `json:"bpt,omitempty"`
	Snapshot  *PoolSnapshot `json:"snapshot,omitempty"`
}
