package client

import (
	"math/big"
	"testing"
	"time"

	"portfolio_tracker/internal/domain/entity"
	wire "portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/pkg/apperrors"
)

func TestNormalizeEVMAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "mixed case", in: " 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 ", want: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{name: "missing prefix", in: "D8DA6BF26964AF9D7EED9E03E53415D37AA96045", want: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{name: "legacy bitcoin", in: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", wantErr: true},
		{name: "bech32 bitcoin", in: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", wantErr: true},
		{name: "too short", in: "0x1234", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEVMAddress(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeEVMAddress(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperrors.Is(err, apperrors.CodeInvalidInput) {
					t.Errorf("CodeOf() = %v, want %v", apperrors.CodeOf(err), apperrors.CodeInvalidInput)
				}
				return
			}
			if got != tt.want {
				t.Errorf("NormalizeEVMAddress(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeEVMAddress_BitcoinMessage(t *testing.T) {
	_, err := NormalizeEVMAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	want := "Bitcoin addresses cannot be used with Ethereum networks"
	if got := apperrors.MessageOf(err); got != want {
		t.Errorf("MessageOf() = %q, want %q", got, want)
	}
}

func TestTokenFilter_Keep(t *testing.T) {
	f := NewTokenFilter(entity.TokenCatalogue{
		EVMSymbols:    []string{"USDC", "wstETH"},
		ScamContracts: []string{"0x00000000F9FD50C832D79FACFE6F4E8CE90A5EFB"},
	})
	tests := []struct {
		name string
		tb   entity.TokenBalance
		want bool
	}{
		{name: "allowed", tb: entity.TokenBalance{ContractAddress: "0xa0b8", Symbol: "USDC", Balance: "1.5"}, want: true},
		{name: "case insensitive", tb: entity.TokenBalance{ContractAddress: "0x7f39", Symbol: "WSTETH", Balance: "0.1"}, want: true},
		{name: "not allowed", tb: entity.TokenBalance{ContractAddress: "0x95ad", Symbol: "SHIB", Balance: "100"}, want: false},
		{name: "scam", tb: entity.TokenBalance{ContractAddress: "0x00000000f9fd50c832d79facfe6f4e8ce90a5efb", Symbol: "USDC", Balance: "5"}, want: false},
		{name: "zero balance", tb: entity.TokenBalance{ContractAddress: "0xa0b8", Symbol: "USDC", Balance: "0"}, want: false},
		{name: "unknown", tb: entity.TokenBalance{ContractAddress: "0xdead", Symbol: "UNKNOWN", Balance: "3"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Keep(tt.tb); got != tt.want {
				t.Errorf("Keep(%+v) = %v, want %v", tt.tb, got, tt.want)
			}
		})
	}
}

func TestParseHexAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{in: "0x000000000000000000000000000000000000000000000000000000000016e360", want: 1500000, wantOK: true},
		{in: "0x0", want: 0, wantOK: true},
		{in: "0x", want: 0, wantOK: true},
		{in: "0xzz", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := ParseHexAmount(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseHexAmount(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && got.Int64() != tt.want {
			t.Errorf("ParseHexAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildTokenBalance(t *testing.T) {
	six := 6
	tests := []struct {
		name string
		raw  *big.Int
		meta *wire.AlchemyTokenMetadata
		want entity.TokenBalance
	}{
		{
			name: "with metadata",
			raw:  big.NewInt(1500000),
			meta: &wire.AlchemyTokenMetadata{Name: "USD Coin", Symbol: "USDC", Decimals: &six},
			want: entity.TokenBalance{ContractAddress: "0xa0b8", Symbol: "USDC", Name: "USD Coin", Balance: "1.5", Decimals: 6},
		},
		{
			name: "missing metadata",
			raw:  new(big.Int).Mul(big.NewInt(2), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
			want: entity.TokenBalance{ContractAddress: "0xa0b8", Symbol: "UNKNOWN", Name: "Unknown Token", Balance: "2", Decimals: 18},
		},
		{
			name: "rounded to six places",
			raw:  big.NewInt(1234567891),
			meta: &wire.AlchemyTokenMetadata{Symbol: "DAI"},
			want: entity.TokenBalance{ContractAddress: "0xa0b8", Symbol: "DAI", Name: "Unknown Token", Balance: "0", Decimals: 18},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTokenBalance("0xa0b8", tt.raw, tt.meta)
			if got != tt.want {
				t.Errorf("BuildTokenBalance() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeTransfers(t *testing.T) {
	sent := []wire.AlchemyAssetTransfer{
		{BlockNum: "0x10", Hash: "0xa"},
		{BlockNum: "0x30", Hash: "0xc"},
	}
	received := []wire.AlchemyAssetTransfer{
		{BlockNum: "0x20", Hash: "0xb"},
		{BlockNum: "0x05", Hash: "0xd"},
	}

	got := MergeTransfers(sent, received, 3)
	wantHashes := []string{"0xc", "0xb", "0xa"}
	wantTypes := []entity.Direction{entity.DirectionSent, entity.DirectionReceived, entity.DirectionSent}
	if len(got) != len(wantHashes) {
		t.Fatalf("MergeTransfers() len = %d, want %d", len(got), len(wantHashes))
	}
	for i := range wantHashes {
		if got[i].Hash != wantHashes[i] || got[i].Type != wantTypes[i] {
			t.Errorf("MergeTransfers()[%d] = %s/%s, want %s/%s", i, got[i].Hash, got[i].Type, wantHashes[i], wantTypes[i])
		}
	}
}

func TestTransfersToTransactions(t *testing.T) {
	value := 0.25
	now := time.UnixMilli(1_700_000_000_000)
	transfers := []DirectedTransfer{
		{AlchemyAssetTransfer: wire.AlchemyAssetTransfer{Hash: "0xa", From: "0x1", To: "0x2", Value: &value, Asset: "USDC"}, Type: entity.DirectionSent, BlockNumber: 16},
		{AlchemyAssetTransfer: wire.AlchemyAssetTransfer{Hash: "0xb", From: "0x3"}, Type: entity.DirectionReceived, BlockNumber: 17},
	}

	got := TransfersToTransactions(transfers, "0xme", "POL", map[uint64]int64{16: 5000}, now)

	want := []entity.Transaction{
		{Hash: "0xa", Timestamp: 5000, Value: 0.25, Type: entity.DirectionSent, Asset: "USDC", From: "0x1", To: "0x2"},
		{Hash: "0xb", Timestamp: now.UnixMilli(), Value: 0, Type: entity.DirectionReceived, Asset: "POL", From: "0x3", To: "0xme"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TransfersToTransactions()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
