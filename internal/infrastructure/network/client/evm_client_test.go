package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/utils"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

// fakeJSONRPC answers single and batched JSON-RPC calls from handlers keyed by method.
func fakeJSONRPC(t *testing.T, handlers map[string]func(params []json.RawMessage) any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		answer := func(req rpcRequest) rpcResponse {
			h, ok := handlers[req.Method]
			if !ok {
				t.Errorf("unexpected method %s", req.Method)
				return rpcResponse{JSONRPC: "2.0", ID: req.ID}
			}
			return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: h(req.Params)}
		}
		w.Header().Set("Content-Type", "application/json")
		if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
			var reqs []rpcRequest
			if err := json.Unmarshal(body, &reqs); err != nil {
				t.Errorf("bad batch: %v", err)
				return
			}
			out := make([]rpcResponse, len(reqs))
			for i, req := range reqs {
				out[i] = answer(req)
			}
			_ = json.NewEncoder(w).Encode(out)
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request: %v", err)
			return
		}
		_ = json.NewEncoder(w).Encode(answer(req))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const (
	trackedAddress = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"
	usdcContract   = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	fooContract    = "0x1111111111111111111111111111111111111111"
	scamContract   = "0x00000000f9fd50c832d79facfe6f4e8ce90a5efb"
)

func testCatalogue() entity.TokenCatalogue {
	return entity.TokenCatalogue{
		EVMSymbols:    []string{"USDC"},
		ScamContracts: []string{scamContract},
	}
}

func TestEVMClient_FetchPosition(t *testing.T) {
	handlers := map[string]func([]json.RawMessage) any{
		"eth_getBalance": func([]json.RawMessage) any { return "0x1bc16d674ec80000" },
		"alchemy_getTokenBalances": func([]json.RawMessage) any {
			return map[string]any{
				"address": trackedAddress,
				"tokenBalances": []map[string]any{
					{"contractAddress": usdcContract, "tokenBalance": "0x000000000000000000000000000000000000000000000000000000000016e360"},
					{"contractAddress": fooContract, "tokenBalance": "0x01"},
					{"contractAddress": scamContract, "tokenBalance": "0x05"},
					{"contractAddress": "0x2222222222222222222222222222222222222222", "tokenBalance": "0x0"},
				},
			}
		},
		"alchemy_getTokenMetadata": func(params []json.RawMessage) any {
			var contract string
			_ = json.Unmarshal(params[0], &contract)
			switch contract {
			case usdcContract:
				return map[string]any{"name": "USD Coin", "symbol": "USDC", "decimals": 6}
			case scamContract:
				t.Error("metadata requested for scam contract")
			}
			return map[string]any{"name": "Foo", "symbol": "FOO", "decimals": 18}
		},
		"alchemy_getAssetTransfers": func(params []json.RawMessage) any {
			var p map[string]any
			_ = json.Unmarshal(params[0], &p)
			if p["maxCount"] != "0x5" || p["order"] != "desc" {
				t.Errorf("transfer params = %v, want maxCount 0x5 and order desc", p)
			}
			if _, ok := p["fromAddress"]; ok {
				return map[string]any{"transfers": []map[string]any{
					{"blockNum": "0x10", "hash": "0xaa", "from": trackedAddress, "to": "0xbb", "value": 1.5, "asset": "ETH"},
				}}
			}
			return map[string]any{"transfers": []map[string]any{
				{"blockNum": "0x20", "hash": "0xcc", "from": "0xdd", "to": trackedAddress, "value": nil, "asset": ""},
			}}
		},
		"eth_getBlockByNumber": func(params []json.RawMessage) any {
			var n string
			_ = json.Unmarshal(params[0], &n)
			if n == "0x20" {
				return map[string]any{"number": "0x20", "timestamp": "0x64"}
			}
			return nil
		},
	}
	srv := fakeJSONRPC(t, handlers)

	netDef := entity.NetworkDefinition{Name: "Ethereum Mainnet", Chain: entity.ChainEthereum, NativeSymbol: "ETH", Decimals: 18, RPCURL: srv.URL}
	c, err := NewEVMClient(context.Background(), netDef, NewTokenFilter(testCatalogue()), nil,
		utils.RetryPolicy{MaxAttempts: 1}, 5*time.Second, nopLogger{})
	if err != nil {
		t.Fatalf("NewEVMClient() error = %v", err)
	}
	defer c.Close()
	now := time.UnixMilli(1_700_000_000_000)
	c.now = func() time.Time { return now }

	pos, err := c.FetchPosition(context.Background(), trackedAddress)
	if err != nil {
		t.Fatalf("FetchPosition() error = %v", err)
	}

	if pos.Chain != entity.ChainEthereum {
		t.Errorf("Chain = %v, want %v", pos.Chain, entity.ChainEthereum)
	}
	if pos.Balance != 2 {
		t.Errorf("Balance = %v, want 2", pos.Balance)
	}
	if len(pos.Tokens) != 1 || pos.Tokens[0].Symbol != "USDC" || pos.Tokens[0].Balance != "1.5" {
		t.Errorf("Tokens = %+v, want one USDC 1.5", pos.Tokens)
	}
	wantTxs := []entity.Transaction{
		{Hash: "0xcc", Timestamp: 100_000, Value: 0, Type: entity.DirectionReceived, Asset: "ETH", From: "0xdd", To: trackedAddress},
		{Hash: "0xaa", Timestamp: now.UnixMilli(), Value: 1.5, Type: entity.DirectionSent, Asset: "ETH", From: trackedAddress, To: "0xbb"},
	}
	if len(pos.LastTransactions) != len(wantTxs) {
		t.Fatalf("LastTransactions len = %d, want %d", len(pos.LastTransactions), len(wantTxs))
	}
	for i := range wantTxs {
		if pos.LastTransactions[i] != wantTxs[i] {
			t.Errorf("LastTransactions[%d] = %+v, want %+v", i, pos.LastTransactions[i], wantTxs[i])
		}
	}
}

func TestEVMClient_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Too Many Requests"}`))
	}))
	defer srv.Close()

	netDef := entity.NetworkDefinition{Name: "Base Mainnet", Chain: entity.ChainBase, NativeSymbol: "ETH", Decimals: 18, RPCURL: srv.URL}
	c, err := NewEVMClient(context.Background(), netDef, NewTokenFilter(testCatalogue()), nil,
		utils.RetryPolicy{MaxAttempts: 1}, 5*time.Second, nopLogger{})
	if err != nil {
		t.Fatalf("NewEVMClient() error = %v", err)
	}
	defer c.Close()

	_, err = c.FetchPosition(context.Background(), trackedAddress)
	if !apperrors.Is(err, apperrors.CodeRateLimited) {
		t.Fatalf("FetchPosition() error = %v, want rate limited", err)
	}
	want := "Rate limit exceeded for Base. Please wait before refreshing again."
	if got := apperrors.MessageOf(err); got != want {
		t.Errorf("MessageOf() = %q, want %q", got, want)
	}
}

func TestNewEVMClient_NotConfigured(t *testing.T) {
	_, err := NewEVMClient(context.Background(), entity.NetworkDefinition{Name: "Ethereum Mainnet"}, nil, nil,
		utils.RetryPolicy{}, time.Second, nopLogger{})
	if !apperrors.Is(err, apperrors.CodeUnavailable) {
		t.Errorf("NewEVMClient() error = %v, want unavailable", err)
	}
}
