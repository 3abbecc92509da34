package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	wire "portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/pkg/metrics"
	"portfolio_tracker/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

const (
	// recentTransferCount caps the transfers fetched per direction and kept after merging.
	recentTransferCount = 5
	alchemyProvider     = "alchemy"
)

var transferCategories = []string{"external", "erc20", "erc721", "erc1155"} //nolint:gochecknoglobals

// EVMClient talks to one EVM network through an Alchemy-compatible JSON-RPC endpoint.
type EVMClient struct {
	rpcClient      *rpc.Client
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	tokens         *TokenFilter
	limiter        *rate.Limiter
	retry          utils.RetryPolicy
	rpcCallTimeout time.Duration
	logger         port.Logger
	now            func() time.Time
}

// NewEVMClient creates a new EVM client for the given network definition.
func NewEVMClient(
	ctx context.Context,
	netDef entity.NetworkDefinition,
	tokens *TokenFilter,
	limiter *rate.Limiter,
	retry utils.RetryPolicy,
	rpcCallTimeout time.Duration,
	logger port.Logger,
) (*EVMClient, error) {
	if netDef.RPCURL == "" {
		return nil, notConfigured("EVMClient.New", netDef.Name)
	}
	rpcClient, err := rpc.DialContext(ctx, netDef.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC for %s: %w", netDef.Name, err)
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &EVMClient{
		rpcClient:      rpcClient,
		ethClient:      ethclient.NewClient(rpcClient),
		netDef:         netDef,
		tokens:         tokens,
		limiter:        limiter,
		retry:          retry,
		rpcCallTimeout: rpcCallTimeout,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.rpcClient.Close()
}

// FetchPosition reads the native balance, supported token balances and
// recent transfers of address. address must already be normalised.
func (c *EVMClient) FetchPosition(ctx context.Context, address string) (entity.ChainPosition, error) {
	balance, err := c.nativeBalance(ctx, address)
	if err != nil {
		return entity.ChainPosition{}, err
	}

	tokens, err := c.tokenBalances(ctx, address)
	if err != nil {
		return entity.ChainPosition{}, err
	}

	txs, err := c.recentTransactions(ctx, address)
	if err != nil {
		return entity.ChainPosition{}, err
	}

	return entity.ChainPosition{
		Chain:            c.netDef.Chain,
		Balance:          utils.FormatUnitsFloat(balance, uint8(c.netDef.Decimals)),
		Tokens:           tokens,
		LastTransactions: txs,
		LastUpdated:      c.now(),
	}, nil
}

// call runs fn under the provider limiter, the per-call timeout and the retry
// policy, and classifies its failure.
func (c *EVMClient) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return utils.Retry(ctx, c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return classifyRPCError(op, c.netDef.Chain.Info().Label, err)
		}
		callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
		defer cancel()

		err := fn(callCtx)
		status := 200
		if err != nil {
			status = rpcStatus(err)
			if isRateLimitText(err.Error()) {
				status = 429
			}
		}
		metrics.UpstreamRequests.WithLabelValues(alchemyProvider, metrics.StatusClass(status)).Inc()
		return classifyRPCError(op, c.netDef.Chain.Info().Label, err)
	})
}

func (c *EVMClient) nativeBalance(ctx context.Context, address string) (*big.Int, error) {
	var balance *big.Int
	err := c.call(ctx, "EVMClient.nativeBalance", func(ctx context.Context) error {
		var err error
		balance, err = c.ethClient.BalanceAt(ctx, common.HexToAddress(address), nil)
		return err
	})
	return balance, err
}

func (c *EVMClient) tokenBalances(ctx context.Context, address string) ([]entity.TokenBalance, error) {
	var result wire.AlchemyTokenBalancesResult
	err := c.call(ctx, "EVMClient.tokenBalances", func(ctx context.Context) error {
		return c.rpcClient.CallContext(ctx, &result, "alchemy_getTokenBalances", address, "erc20")
	})
	if err != nil {
		return nil, err
	}

	type held struct {
		contract string
		raw      *big.Int
	}
	nonZero := make([]held, 0, len(result.TokenBalances))
	for _, tb := range result.TokenBalances {
		if tb.Error != nil {
			continue
		}
		raw, ok := ParseHexAmount(tb.TokenBalance)
		if !ok || raw.Sign() == 0 {
			continue
		}
		if c.tokens.IsScam(tb.ContractAddress) {
			c.logger.Debug("Filtered out scam token", "network", c.netDef.Name, "contract", tb.ContractAddress)
			continue
		}
		nonZero = append(nonZero, held{contract: tb.ContractAddress, raw: raw})
	}
	if len(nonZero) == 0 {
		return []entity.TokenBalance{}, nil
	}

	batch := make([]rpc.BatchElem, len(nonZero))
	for i, h := range nonZero {
		batch[i] = rpc.BatchElem{
			Method: "alchemy_getTokenMetadata",
			Args:   []interface{}{h.contract},
			Result: new(wire.AlchemyTokenMetadata),
		}
	}
	err = c.call(ctx, "EVMClient.tokenMetadata", func(ctx context.Context) error {
		return c.rpcClient.BatchCallContext(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	tokens := make([]entity.TokenBalance, 0, len(nonZero))
	for i, h := range nonZero {
		var meta *wire.AlchemyTokenMetadata
		if batch[i].Error == nil {
			meta, _ = batch[i].Result.(*wire.AlchemyTokenMetadata)
		} else {
			c.logger.Debug("Token metadata lookup failed", "network", c.netDef.Name, "contract", h.contract, "error", batch[i].Error)
		}
		tb := BuildTokenBalance(h.contract, h.raw, meta)
		if !c.tokens.Keep(tb) {
			continue
		}
		tokens = append(tokens, tb)
	}
	return tokens, nil
}

func (c *EVMClient) transfers(ctx context.Context, op string, params wire.AlchemyAssetTransfersParams) ([]wire.AlchemyAssetTransfer, error) {
	var result wire.AlchemyAssetTransfersResult
	err := c.call(ctx, op, func(ctx context.Context) error {
		return c.rpcClient.CallContext(ctx, &result, "alchemy_getAssetTransfers", params)
	})
	return result.Transfers, err
}

func (c *EVMClient) recentTransactions(ctx context.Context, address string) ([]entity.Transaction, error) {
	base := wire.AlchemyAssetTransfersParams{
		FromBlock: "0x0",
		ToBlock:   "latest",
		Category:  transferCategories,
		Order:     "desc",
		MaxCount:  hexutil.EncodeUint64(recentTransferCount),
	}

	sentParams := base
	sentParams.FromAddress = address
	sent, err := c.transfers(ctx, "EVMClient.sentTransfers", sentParams)
	if err != nil {
		return nil, err
	}

	receivedParams := base
	receivedParams.ToAddress = address
	received, err := c.transfers(ctx, "EVMClient.receivedTransfers", receivedParams)
	if err != nil {
		return nil, err
	}

	merged := MergeTransfers(sent, received, recentTransferCount)
	timestamps := c.blockTimestamps(ctx, merged)
	return TransfersToTransactions(merged, address, c.netDef.NativeSymbol, timestamps, c.now()), nil
}

type blockHeader struct {
	Number    hexutil.Uint64 `json:"number"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

// blockTimestamps resolves the unix-ms time of every block the transfers sit
// in with one batched request. Blocks that fail to resolve are left out.
func (c *EVMClient) blockTimestamps(ctx context.Context, transfers []DirectedTransfer) map[uint64]int64 {
	out := make(map[uint64]int64)
	seen := make(map[uint64]struct{})
	var batch []rpc.BatchElem
	for _, t := range transfers {
		if _, ok := seen[t.BlockNumber]; ok {
			continue
		}
		seen[t.BlockNumber] = struct{}{}
		batch = append(batch, rpc.BatchElem{
			Method: "eth_getBlockByNumber",
			Args:   []interface{}{hexutil.EncodeUint64(t.BlockNumber), false},
			Result: new(blockHeader),
		})
	}
	if len(batch) == 0 {
		return out
	}

	err := c.call(ctx, "EVMClient.blockTimestamps", func(ctx context.Context) error {
		return c.rpcClient.BatchCallContext(ctx, batch)
	})
	if err != nil {
		c.logger.Warn("Failed to resolve block timestamps", "network", c.netDef.Name, "error", err)
		return out
	}
	for _, elem := range batch {
		if elem.Error != nil {
			continue
		}
		if h, ok := elem.Result.(*blockHeader); ok && h != nil && h.Timestamp > 0 {
			out[uint64(h.Number)] = int64(h.Timestamp) * 1000
		}
	}
	return out
}
