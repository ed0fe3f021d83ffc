package rpc

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/retry"
	"golang.org/x/time/rate"
)

// LogQuery selects the logs of one contract in an inclusive block range.
// Topics follows eth_getLogs semantics: position i matches any of Topics[i].
type LogQuery struct {
	Address   gethCommon.Address
	Topics    [][]gethCommon.Hash
	FromBlock *big.Int
	ToBlock   *big.Int
}

type IRPCClient interface {
	GetLatestBlockNumber(ctx context.Context) (*big.Int, error)
	GetBlockTimestamp(ctx context.Context, blockNumber *big.Int) (uint64, error)
	GetMetadata(ctx context.Context, contract gethCommon.Address) (*common.ContractMetadata, error)
	GetLogs(ctx context.Context, query LogQuery) ([]types.Log, error)
	GetChainID() *big.Int
	Close()
}

type Client struct {
	RPCClient *gethRpc.Client
	EthClient *ethclient.Client
	tokenABI  *abi.ABI
	limiter   *rate.Limiter
	url       string
	chainID   *big.Int
}

// Initialize dials config.Cfg.RPC.URL and looks up the chain id through retrier.
// tokenABI must contain the getMetadata method.
func Initialize(ctx context.Context, tokenABI *abi.ABI, retrier *retry.Retrier) (IRPCClient, error) {
	rpcUrl := config.Cfg.RPC.URL
	if rpcUrl == "" {
		return nil, fmt.Errorf("RPC_URL environment variable is not set")
	}
	log.Debug().Msg("Initializing RPC")
	rpcClient, dialErr := gethRpc.Dial(rpcUrl)
	if dialErr != nil {
		return nil, dialErr
	}

	rpc := NewClient(rpcClient, tokenABI, config.Cfg.RPC.RequestsPerSecond)
	rpc.url = rpcUrl

	if err := rpc.setChainID(ctx, retrier); err != nil {
		rpc.Close()
		return nil, err
	}
	return IRPCClient(rpc), nil
}

// NewClient wraps an already dialled client. A non-positive requestsPerSecond disables throttling.
func NewClient(rpcClient *gethRpc.Client, tokenABI *abi.ABI, requestsPerSecond float64) *Client {
	c := &Client{
		RPCClient: rpcClient,
		EthClient: ethclient.NewClient(rpcClient),
		tokenABI:  tokenABI,
	}
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return c
}

func (rpc *Client) GetChainID() *big.Int {
	return rpc.chainID
}

func (rpc *Client) Close() {
	rpc.EthClient.Close()
}

func (rpc *Client) wait(ctx context.Context) error {
	if rpc.limiter == nil {
		return nil
	}
	return rpc.limiter.Wait(ctx)
}

func (rpc *Client) setChainID(ctx context.Context, retrier *retry.Retrier) error {
	chainID, err := retry.Call(ctx, retrier, OpGetChainID, func(ctx context.Context) (*big.Int, error) {
		if err := rpc.wait(ctx); err != nil {
			return nil, err
		}
		return rpc.EthClient.ChainID(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %w", err)
	}
	rpc.chainID = chainID
	log.Info().Str("url", redactURL(rpc.url)).Str("chainId", chainID.String()).Msg("Connected to RPC")
	return nil
}

func (rpc *Client) GetLatestBlockNumber(ctx context.Context) (*big.Int, error) {
	if err := rpc.wait(ctx); err != nil {
		return nil, err
	}
	blockNumber, err := rpc.EthClient.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block number: %v", err)
	}
	return new(big.Int).SetUint64(blockNumber), nil
}

func (rpc *Client) GetBlockTimestamp(ctx context.Context, blockNumber *big.Int) (uint64, error) {
	if err := rpc.wait(ctx); err != nil {
		return 0, err
	}
	header, err := rpc.EthClient.HeaderByNumber(ctx, blockNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to get header of block %s: %w", blockNumber.String(), err)
	}
	if header == nil {
		return 0, fmt.Errorf("block %s not found", blockNumber.String())
	}
	return header.Time, nil
}

func (rpc *Client) GetMetadata(ctx context.Context, contract gethCommon.Address) (*common.ContractMetadata, error) {
	if rpc.tokenABI == nil {
		return nil, fmt.Errorf("no token ABI configured for getMetadata")
	}
	input, err := rpc.tokenABI.Pack("getMetadata")
	if err != nil {
		return nil, fmt.Errorf("failed to pack getMetadata call: %w", err)
	}
	if err := rpc.wait(ctx); err != nil {
		return nil, err
	}
	output, err := rpc.EthClient.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("getMetadata call failed: %w", err)
	}
	return UnpackMetadata(rpc.tokenABI, output)
}

// UnpackMetadata decodes the return data of getMetadata.
func UnpackMetadata(tokenABI *abi.ABI, output []byte) (*common.ContractMetadata, error) {
	values := make(map[string]interface{})
	if err := tokenABI.UnpackIntoMap(values, "getMetadata", output); err != nil {
		return nil, fmt.Errorf("failed to unpack getMetadata result: %w", err)
	}
	addresses, ok := values["accounts"].([]gethCommon.Address)
	if !ok {
		return nil, fmt.Errorf("getMetadata result has no accounts array")
	}
	holders, ok := values["holders"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getMetadata result has no holders count")
	}
	accounts := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		accounts = append(accounts, addr.Hex())
	}
	return &common.ContractMetadata{Accounts: accounts, Holders: holders}, nil
}

func (rpc *Client) GetLogs(ctx context.Context, query LogQuery) ([]types.Log, error) {
	if err := rpc.wait(ctx); err != nil {
		return nil, err
	}
	logs, err := rpc.EthClient.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: query.FromBlock,
		ToBlock:   query.ToBlock,
		Addresses: []gethCommon.Address{query.Address},
		Topics:    query.Topics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for %s in [%s, %s]: %w", query.Address.Hex(), query.FromBlock.String(), query.ToBlock.String(), err)
	}
	return logs, nil
}

// redactURL drops anything after the host, which usually carries an API key.
func redactURL(url string) string {
	scheme := ""
	rest := url
	if i := strings.Index(url, "://"); i >= 0 {
		scheme, rest = url[:i+3], url[i+3:]
	}
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}
	return scheme + rest
}
