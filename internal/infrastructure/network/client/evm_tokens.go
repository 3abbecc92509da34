package client

import (
	"math/big"
	"regexp"
	"sort"
	"strings"
	"time"

	"portfolio_tracker/internal/domain/entity"
	wire "portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

const (
	unknownTokenSymbol = "UNKNOWN"
	unknownTokenName   = "Unknown Token"
	defaultDecimals    = 18
)

var ( //nolint:gochecknoglobals
	legacyBitcoinPattern = regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`)
	bech32BitcoinPattern = regexp.MustCompile(`^bc1[a-z0-9]{39,59}$`)
)

// NormalizeEVMAddress trims, lower-cases and 0x-prefixes address. Bitcoin
// addresses and anything that is not 20 hex bytes are rejected.
func NormalizeEVMAddress(address string) (string, error) {
	const op = "NormalizeEVMAddress"
	clean := strings.TrimSpace(address)
	if legacyBitcoinPattern.MatchString(clean) || bech32BitcoinPattern.MatchString(clean) {
		return "", apperrors.New(apperrors.CodeInvalidInput, op, "Bitcoin addresses cannot be used with Ethereum networks")
	}
	lower := strings.ToLower(clean)
	if !strings.HasPrefix(lower, "0x") {
		lower = "0x" + lower
	}
	if !common.IsHexAddress(lower) {
		return "", apperrors.New(apperrors.CodeInvalidInput, op, "Invalid Ethereum address format. Please check the address.")
	}
	return lower, nil
}

// TokenFilter decides which ERC-20 balances are reported.
type TokenFilter struct {
	allowed map[string]struct{}
	scam    map[string]struct{}
}

// NewTokenFilter builds a filter from the catalogue's allow-list and
// scam deny-list.
func NewTokenFilter(catalogue entity.TokenCatalogue) *TokenFilter {
	f := &TokenFilter{
		allowed: make(map[string]struct{}, len(catalogue.EVMSymbols)),
		scam:    make(map[string]struct{}, len(catalogue.ScamContracts)),
	}
	for _, s := range catalogue.EVMSymbols {
		f.allowed[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	for _, c := range catalogue.ScamContracts {
		f.scam[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	return f
}

// IsScam reports whether contract is on the deny-list.
func (f *TokenFilter) IsScam(contract string) bool {
	_, ok := f.scam[strings.ToLower(contract)]
	return ok
}

// Keep reports whether tb passes the deny-list, the allow-list and has a
// positive balance.
func (f *TokenFilter) Keep(tb entity.TokenBalance) bool {
	if f.IsScam(tb.ContractAddress) {
		return false
	}
	if _, ok := f.allowed[strings.ToUpper(tb.Symbol)]; !ok {
		return false
	}
	return utils.ParseAmount(tb.Balance) > 0
}

// ParseHexAmount parses a 0x-prefixed hex quantity. Leading zeros are
// accepted since token balance endpoints pad to 32 bytes.
func ParseHexAmount(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if s == "" {
		return big.NewInt(0), true
	}
	return new(big.Int).SetString(s, 16)
}

// BuildTokenBalance scales raw by the metadata decimals. Missing metadata
// falls back to UNKNOWN with 18 decimals.
func BuildTokenBalance(contract string, raw *big.Int, meta *wire.AlchemyTokenMetadata) entity.TokenBalance {
	symbol, name, decimals := unknownTokenSymbol, unknownTokenName, defaultDecimals
	if meta != nil {
		if meta.Symbol != "" {
			symbol = meta.Symbol
		}
		if meta.Name != "" {
			name = meta.Name
		}
		if meta.Decimals != nil && *meta.Decimals > 0 && *meta.Decimals <= 255 {
			decimals = *meta.Decimals
		}
	}
	return entity.TokenBalance{
		ContractAddress: contract,
		Symbol:          symbol,
		Name:            name,
		Balance:         utils.FormatUnits(raw, uint8(decimals)).String(),
		Decimals:        uint8(decimals),
	}
}

// DirectedTransfer is a transfer tagged with its side relative to the tracked address.
type DirectedTransfer struct {
	wire.AlchemyAssetTransfer
	Type        entity.Direction
	BlockNumber uint64
}

// MergeTransfers combines outgoing and incoming transfers, newest block
// first, and keeps at most limit of them.
func MergeTransfers(sent, received []wire.AlchemyAssetTransfer, limit int) []DirectedTransfer {
	all := make([]DirectedTransfer, 0, len(sent)+len(received))
	for _, t := range sent {
		all = append(all, DirectedTransfer{AlchemyAssetTransfer: t, Type: entity.DirectionSent, BlockNumber: blockNumber(t.BlockNum)})
	}
	for _, t := range received {
		all = append(all, DirectedTransfer{AlchemyAssetTransfer: t, Type: entity.DirectionReceived, BlockNumber: blockNumber(t.BlockNum)})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].BlockNumber > all[j].BlockNumber
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

func blockNumber(s string) uint64 {
	n, ok := ParseHexAmount(s)
	if !ok || !n.IsUint64() {
		return 0
	}
	return n.Uint64()
}

// TransfersToTransactions converts merged transfers. Blocks missing from
// timestamps are stamped with now.
func TransfersToTransactions(transfers []DirectedTransfer, address, nativeSymbol string, timestamps map[uint64]int64, now time.Time) []entity.Transaction {
	txs := make([]entity.Transaction, 0, len(transfers))
	for _, t := range transfers {
		ts, ok := timestamps[t.BlockNumber]
		if !ok {
			ts = now.UnixMilli()
		}
		value := 0.0
		if t.Value != nil {
			value = *t.Value
		}
		asset := t.Asset
		if asset == "" {
			asset = nativeSymbol
		}
		to := t.To
		if to == "" {
			to = address
		}
		txs = append(txs, entity.Transaction{
			Hash:      t.Hash,
			Timestamp: ts,
			Value:     value,
			Type:      t.Type,
			Asset:     asset,
			From:      t.From,
			To:        to,
		})
	}
	return txs
}
