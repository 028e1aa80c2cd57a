package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// BlockRef identifies the block a pool snapshot is evaluated at.
type BlockRef struct {
	Number    uint64
	Timestamp uint64
}

// Client reads token state and block times over JSON-RPC.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	mu     sync.RWMutex
	blocks map[uint64]BlockRef
}

// NewClient dials rpcURL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		blocks:    make(map[uint64]BlockRef),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// BlockAt resolves a block number and its timestamp. Zero means the latest
// block. Resolved blocks are cached by number.
func (c *Client) BlockAt(ctx context.Context, number uint64) (BlockRef, error) {
	if number > 0 {
		c.mu.RLock()
		ref, ok := c.blocks[number]
		c.mu.RUnlock()
		if ok {
			return ref, nil
		}
	}

	var query *big.Int
	if number > 0 {
		query = new(big.Int).SetUint64(number)
	}
	header, err := c.ethClient.HeaderByNumber(ctx, query)
	if err != nil {
		return BlockRef{}, fmt.Errorf("header %d: %w", number, err)
	}

	ref := BlockRef{Number: header.Number.Uint64(), Timestamp: header.Time}
	c.mu.Lock()
	c.blocks[ref.Number] = ref
	c.mu.Unlock()
	return ref, nil
}

// CallContract performs an eth_call.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}
