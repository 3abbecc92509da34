package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio_tracker/internal/domain/entity"
	wire "portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/infrastructure/httpclient"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/utils"

	"go.uber.org/zap"
)

const satoshiAddress = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

func TestClassifyBitcoinTx(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	tests := []struct {
		name      string
		tx        wire.MempoolTx
		wantType  entity.Direction
		wantValue float64
		wantTS    int64
	}{
		{
			name: "sent counts outputs paid elsewhere",
			tx: wire.MempoolTx{
				TxID: "a",
				Vin:  []wire.MempoolVin{{Prevout: &wire.MempoolPrevout{ScriptPubKeyAddress: satoshiAddress, Value: 100_000_000}}},
				Vout: []wire.MempoolVout{
					{ScriptPubKeyAddress: "bc1qother", Value: 25_000_000},
					{ScriptPubKeyAddress: satoshiAddress, Value: 74_000_000},
				},
				Status: wire.MempoolTxStatus{Confirmed: true, BlockTime: 1_600_000_000},
			},
			wantType:  entity.DirectionSent,
			wantValue: 0.25,
			wantTS:    1_600_000_000_000,
		},
		{
			name: "received counts outputs to the address",
			tx: wire.MempoolTx{
				TxID: "b",
				Vin:  []wire.MempoolVin{{Prevout: &wire.MempoolPrevout{ScriptPubKeyAddress: "bc1qother"}}},
				Vout: []wire.MempoolVout{
					{ScriptPubKeyAddress: satoshiAddress, Value: 5_000},
					{ScriptPubKeyAddress: satoshiAddress, Value: 1_000},
					{ScriptPubKeyAddress: "bc1qchange", Value: 99_000},
				},
				Status: wire.MempoolTxStatus{BlockTime: 1_600_000_100},
			},
			wantType:  entity.DirectionReceived,
			wantValue: 0.00006,
			wantTS:    1_600_000_100_000,
		},
		{
			name: "unconfirmed coinbase-like input",
			tx: wire.MempoolTx{
				TxID: "c",
				Vin:  []wire.MempoolVin{{}},
				Vout: []wire.MempoolVout{{ScriptPubKeyAddress: satoshiAddress, Value: 50}},
			},
			wantType:  entity.DirectionReceived,
			wantValue: 0.0000005,
			wantTS:    now.UnixMilli(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyBitcoinTx(tt.tx, satoshiAddress, now)
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", got.Value, tt.wantValue)
			}
			if got.Timestamp != tt.wantTS {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, tt.wantTS)
			}
			if got.Asset != "BTC" || got.Hash != tt.tx.TxID {
				t.Errorf("Asset/Hash = %s/%s, want BTC/%s", got.Asset, got.Hash, tt.tx.TxID)
			}
		})
	}
}

func TestBitcoinBalance(t *testing.T) {
	info := wire.MempoolAddressInfo{ChainStats: wire.MempoolChainStats{FundedTxoSum: 150_000_000, SpentTxoSum: 100_000_000}}
	if got := BitcoinBalance(info, BalanceModeFunded); got != 1.5 {
		t.Errorf("BitcoinBalance(funded) = %v, want 1.5", got)
	}
	if got := BitcoinBalance(info, BalanceModeNet); got != 0.5 {
		t.Errorf("BitcoinBalance(net) = %v, want 0.5", got)
	}
}

func TestBitcoinClient_ValidateAddress(t *testing.T) {
	c := NewBitcoinClient(nil, "https://mempool.space/api", "", nopLogger{})
	tests := []struct {
		network string
		address string
		wantErr bool
	}{
		{network: "mainnet", address: satoshiAddress},
		{network: "", address: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"},
		{network: "mainnet", address: "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", wantErr: true},
		{network: "testnet", address: satoshiAddress, wantErr: true},
		{network: "testnet", address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"},
		{network: "mainnet", address: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb", wantErr: true},
	}
	for _, tt := range tests {
		err := c.ValidateAddress(entity.ChainBitcoin, tt.network, tt.address)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateAddress(%q, %q) error = %v, wantErr %v", tt.network, tt.address, err, tt.wantErr)
		}
		if err != nil && !apperrors.Is(err, apperrors.CodeInvalidInput) {
			t.Errorf("ValidateAddress(%q, %q) code = %v, want %v", tt.network, tt.address, apperrors.CodeOf(err), apperrors.CodeInvalidInput)
		}
	}
}

func TestBitcoinClient_apiBase(t *testing.T) {
	c := NewBitcoinClient(nil, "https://mempool.space/api/", "", nopLogger{})
	if got := c.apiBase("mainnet"); got != "https://mempool.space/api" {
		t.Errorf("apiBase(mainnet) = %q", got)
	}
	if got := c.apiBase("testnet"); got != "https://mempool.space/testnet/api" {
		t.Errorf("apiBase(testnet) = %q", got)
	}
}

func newBitcoinTestClient(t *testing.T, h http.HandlerFunc) *BitcoinClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rest := httpclient.NewRESTClient("mempool.space", time.Second, zap.NewNop(),
		httpclient.WithRetryPolicy(utils.RetryPolicy{MaxAttempts: 1}))
	return NewBitcoinClient(rest, srv.URL+"/api", BalanceModeFunded, nopLogger{})
}

func TestBitcoinClient_FetchPositions(t *testing.T) {
	c := newBitcoinTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/address/" + satoshiAddress:
			_, _ = w.Write([]byte(`{"address":"` + satoshiAddress + `","chain_stats":{"funded_txo_sum":50000000,"spent_txo_sum":0}}`))
		case "/api/address/" + satoshiAddress + "/txs":
			_, _ = w.Write([]byte(`[
				{"txid":"t1","vin":[{"prevout":{"scriptpubkey_address":"x"}}],"vout":[{"scriptpubkey_address":"` + satoshiAddress + `","value":1000}],"status":{"confirmed":true,"block_time":10}},
				{"txid":"t2","vin":[],"vout":[]},{"txid":"t3","vin":[],"vout":[]},{"txid":"t4","vin":[],"vout":[]},
				{"txid":"t5","vin":[],"vout":[]},{"txid":"t6","vin":[],"vout":[]}
			]`))
		default:
			http.NotFound(w, r)
		}
	})

	got, err := c.FetchPositions(context.Background(), entity.ChainBitcoin, "mainnet", satoshiAddress)
	if err != nil {
		t.Fatalf("FetchPositions() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FetchPositions() len = %d, want 1", len(got))
	}
	if got[0].Balance != 0.5 {
		t.Errorf("Balance = %v, want 0.5", got[0].Balance)
	}
	if len(got[0].LastTransactions) != 5 {
		t.Errorf("LastTransactions len = %d, want 5", len(got[0].LastTransactions))
	}
	if tx := got[0].LastTransactions[0]; tx.Hash != "t1" || tx.Timestamp != 10_000 || tx.Type != entity.DirectionReceived {
		t.Errorf("LastTransactions[0] = %+v", tx)
	}
}

func TestBitcoinClient_FetchPositions_Errors(t *testing.T) {
	tests := []struct {
		name       string
		infoStatus int
		txsStatus  int
		wantCode   apperrors.Code
		wantTxs    int
	}{
		{name: "summary rate limited", infoStatus: http.StatusTooManyRequests, wantCode: apperrors.CodeRateLimited},
		{name: "summary not found", infoStatus: http.StatusNotFound, wantCode: apperrors.CodeNotFound},
		{name: "summary unavailable", infoStatus: http.StatusServiceUnavailable, wantCode: apperrors.CodeUnavailable},
		{name: "transactions rate limited", infoStatus: http.StatusOK, txsStatus: http.StatusTooManyRequests, wantCode: apperrors.CodeRateLimited},
		{name: "transactions failure tolerated", infoStatus: http.StatusOK, txsStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBitcoinTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/address/"+satoshiAddress {
					w.WriteHeader(tt.infoStatus)
					_, _ = w.Write([]byte(`{"chain_stats":{"funded_txo_sum":1}}`))
					return
				}
				w.WriteHeader(tt.txsStatus)
			})
			got, err := c.FetchPositions(context.Background(), entity.ChainBitcoin, "mainnet", satoshiAddress)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("FetchPositions() error = %v", err)
				}
				if len(got[0].LastTransactions) != tt.wantTxs {
					t.Errorf("LastTransactions len = %d, want %d", len(got[0].LastTransactions), tt.wantTxs)
				}
				return
			}
			if code := apperrors.CodeOf(err); code != tt.wantCode {
				t.Errorf("CodeOf() = %v, want %v (err %v)", code, tt.wantCode, err)
			}
		})
	}
}
