package rpc

import (
	"context"
	"math/big"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/retry"
)

const (
	OpGetBlockNumber    = "getBlockNumber"
	OpGetBlockTimestamp = "getBlockTimestamp"
	OpGetMetadata       = "getMetadata"
	OpFetchLogs         = "fetchLogs"
	OpGetChainID        = "getChainId"
)

// RetryingClient routes every call of the wrapped client through a shared Retrier.
type RetryingClient struct {
	inner   IRPCClient
	retrier *retry.Retrier
}

func NewRetryingClient(inner IRPCClient, retrier *retry.Retrier) *RetryingClient {
	return &RetryingClient{
		inner:   inner,
		retrier: retrier,
	}
}

func (c *RetryingClient) GetLatestBlockNumber(ctx context.Context) (*big.Int, error) {
	return retry.Call(ctx, c.retrier, OpGetBlockNumber, func(ctx context.Context) (*big.Int, error) {
		return c.inner.GetLatestBlockNumber(ctx)
	})
}

func (c *RetryingClient) GetBlockTimestamp(ctx context.Context, blockNumber *big.Int) (uint64, error) {
	return retry.Call(ctx, c.retrier, OpGetBlockTimestamp, func(ctx context.Context) (uint64, error) {
		return c.inner.GetBlockTimestamp(ctx, blockNumber)
	})
}

func (c *RetryingClient) GetMetadata(ctx context.Context, contract gethCommon.Address) (*common.ContractMetadata, error) {
	return retry.Call(ctx, c.retrier, OpGetMetadata, func(ctx context.Context) (*common.ContractMetadata, error) {
		return c.inner.GetMetadata(ctx, contract)
	})
}

func (c *RetryingClient) GetLogs(ctx context.Context, query LogQuery) ([]types.Log, error) {
	return retry.Call(ctx, c.retrier, OpFetchLogs, func(ctx context.Context) ([]types.Log, error) {
		return c.inner.GetLogs(ctx, query)
	})
}

func (c *RetryingClient) GetChainID() *big.Int {
	return c.inner.GetChainID()
}

func (c *RetryingClient) Close() {
	c.inner.Close()
}
