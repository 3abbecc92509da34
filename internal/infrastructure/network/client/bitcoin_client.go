package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	wire "portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/infrastructure/httpclient"
	"portfolio_tracker/internal/pkg/apperrors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// BalanceModeFunded reports the total ever received, matching the explorer's funded sum.
	BalanceModeFunded = "funded"
	// BalanceModeNet reports funded minus spent.
	BalanceModeNet = "net"

	networkTestnet = "testnet"
)

// BitcoinClient reads Bitcoin balances and transactions from a
// mempool.space compatible explorer.
type BitcoinClient struct {
	rest        *httpclient.RESTClient
	baseURL     string
	balanceMode string
	logger      port.Logger
	now         func() time.Time
}

// NewBitcoinClient creates a new BitcoinClient.
func NewBitcoinClient(rest *httpclient.RESTClient, baseURL, balanceMode string, logger port.Logger) *BitcoinClient {
	if balanceMode == "" {
		balanceMode = BalanceModeFunded
	}
	return &BitcoinClient{
		rest:        rest,
		baseURL:     strings.TrimRight(baseURL, "/"),
		balanceMode: balanceMode,
		logger:      logger,
		now:         time.Now,
	}
}

// Chains implements port.ChainAdapter.
func (c *BitcoinClient) Chains() []entity.Chain {
	return []entity.Chain{entity.ChainBitcoin}
}

func chainParams(network string) *chaincfg.Params {
	if strings.EqualFold(network, networkTestnet) {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// ValidateAddress implements port.ChainAdapter.
func (c *BitcoinClient) ValidateAddress(_ entity.Chain, network, address string) error {
	params := chainParams(network)
	addr, err := btcutil.DecodeAddress(strings.TrimSpace(address), params)
	if err != nil || !addr.IsForNet(params) {
		return apperrors.New(apperrors.CodeInvalidInput, "BitcoinClient.ValidateAddress",
			fmt.Sprintf("Invalid Bitcoin %s address. Please check the address format.", strings.ToLower(networkOrDefault(network))))
	}
	return nil
}

func networkOrDefault(network string) string {
	if network == "" {
		return entity.DefaultNetwork
	}
	return network
}

func (c *BitcoinClient) apiBase(network string) string {
	if !strings.EqualFold(network, networkTestnet) {
		return c.baseURL
	}
	if strings.HasSuffix(c.baseURL, "/api") {
		return strings.TrimSuffix(c.baseURL, "/api") + "/testnet/api"
	}
	return c.baseURL + "/testnet"
}

// FetchPositions implements port.ChainAdapter.
func (c *BitcoinClient) FetchPositions(ctx context.Context, chain entity.Chain, network, address string) ([]entity.ChainPosition, error) {
	address = strings.TrimSpace(address)
	if err := c.ValidateAddress(chain, network, address); err != nil {
		return nil, err
	}
	base := c.apiBase(network)
	escaped := url.PathEscape(address)

	var info wire.MempoolAddressInfo
	if err := c.rest.GetJSON(ctx, "BitcoinClient.addressInfo", fmt.Sprintf("%s/address/%s", base, escaped), nil, &info); err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return nil, &apperrors.AppError{
				Code:    apperrors.CodeNotFound,
				Op:      "BitcoinClient.addressInfo",
				Message: "Bitcoin address not found. Please check the address format.",
				Err:     err,
			}
		}
		return nil, err
	}

	now := c.now()
	var txs []wire.MempoolTx
	err := c.rest.GetJSON(ctx, "BitcoinClient.transactions", fmt.Sprintf("%s/address/%s/txs", base, escaped), nil, &txs)
	switch {
	case apperrors.Is(err, apperrors.CodeRateLimited):
		return nil, &apperrors.AppError{
			Code:       apperrors.CodeRateLimited,
			Op:         "BitcoinClient.transactions",
			Message:    "Rate limit exceeded while fetching transactions. Please wait before trying again.",
			RetryAfter: apperrors.RetryAfterOf(err),
			Err:        err,
		}
	case err != nil:
		c.logger.Warn("Failed to fetch Bitcoin transactions", "address", address, "error", err)
		txs = nil
	}

	if len(txs) > recentTransferCount {
		txs = txs[:recentTransferCount]
	}
	transactions := make([]entity.Transaction, 0, len(txs))
	for _, tx := range txs {
		transactions = append(transactions, ClassifyBitcoinTx(tx, address, now))
	}

	return []entity.ChainPosition{{
		Chain:            entity.ChainBitcoin,
		Balance:          BitcoinBalance(info, c.balanceMode),
		Tokens:           []entity.TokenBalance{},
		LastTransactions: transactions,
		LastUpdated:      now,
	}}, nil
}

// BitcoinBalance converts the confirmed address stats into BTC.
func BitcoinBalance(info wire.MempoolAddressInfo, mode string) float64 {
	sats := info.ChainStats.FundedTxoSum
	if mode == BalanceModeNet {
		sats -= info.ChainStats.SpentTxoSum
	}
	return btcutil.Amount(sats).ToBTC()
}

// ClassifyBitcoinTx decides the direction of tx relative to address. A
// transaction spending one of the address's outputs is "sent" and valued at
// the outputs paid elsewhere; otherwise it is "received" and valued at the
// outputs paid to the address. Unconfirmed transactions are stamped with now.
func ClassifyBitcoinTx(tx wire.MempoolTx, address string, now time.Time) entity.Transaction {
	sent := false
	for _, in := range tx.Vin {
		if in.Prevout != nil && in.Prevout.ScriptPubKeyAddress == address {
			sent = true
			break
		}
	}

	var sats int64
	for _, out := range tx.Vout {
		toAddress := out.ScriptPubKeyAddress == address
		if sent != toAddress {
			sats += out.Value
		}
	}

	direction := entity.DirectionReceived
	if sent {
		direction = entity.DirectionSent
	}
	ts := now.UnixMilli()
	if tx.Status.BlockTime > 0 {
		ts = tx.Status.BlockTime * 1000
	}
	return entity.Transaction{
		Hash:      tx.TxID,
		Timestamp: ts,
		Value:     btcutil.Amount(sats).ToBTC(),
		Type:      direction,
		Asset:     entity.ChainBitcoin.NativeSymbol(),
	}
}
