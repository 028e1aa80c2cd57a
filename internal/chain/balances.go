package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"reclamm/internal/model"
)

const (
	BalanceMethodBlock  = "block"
	BalanceMethodLatest = "latest"
)

// FetchBalances reads the raw balances of both tokens held by holder at
// blockNumber, falling back to the latest block when the historical call
// fails. A zero blockNumber reads latest directly.
func FetchBalances(ctx context.Context, caller ContractCaller, tokens [2]common.Address, holder common.Address, blockNumber uint64) (model.Balances, string, error) {
	if blockNumber > 0 {
		block := new(big.Int).SetUint64(blockNumber)
		a, errA := BalanceOf(ctx, caller, tokens[model.TokenA], holder, block)
		b, errB := BalanceOf(ctx, caller, tokens[model.TokenB], holder, block)
		if errA == nil && errB == nil {
			return model.NewBalances(a, b), BalanceMethodBlock, nil
		}
	}

	a, errA := BalanceOf(ctx, caller, tokens[model.TokenA], holder, nil)
	if errA != nil {
		return model.Balances{}, "", fmt.Errorf("balanceOf token a: %w", errA)
	}
	b, errB := BalanceOf(ctx, caller, tokens[model.TokenB], holder, nil)
	if errB != nil {
		return model.Balances{}, "", fmt.Errorf("balanceOf token b: %w", errB)
	}
	return model.NewBalances(a, b), BalanceMethodLatest, nil
}
