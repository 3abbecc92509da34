package tokenloader

import (
	"fmt"
	"strings"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/utils"
)

// DefaultEVMSymbols is the ERC-20 allow-list used when no catalogue file is configured.
var DefaultEVMSymbols = []string{ //nolint:gochecknoglobals
	"USDC", "USDT", "DAI", "WETH", "WBTC", "CBBTC",
	"LINK", "UNI", "AAVE", "CRV", "COMP", "MKR", "SNX", "1INCH",
	"WSTETH", "STETH", "RETH", "EUL", "PENDLE", "INST",
	"ARB", "OP", "POL",
}

// DefaultScamContracts are ERC-20 contracts that are never reported.
var DefaultScamContracts = []string{ //nolint:gochecknoglobals
	"0x00000000f9fd50c832d79facfe6f4e8ce90a5efb", // fake POL
}

// DefaultSolanaMints are the SPL tokens reported by the Solana adapter.
var DefaultSolanaMints = []entity.TokenInfo{ //nolint:gochecknoglobals
	{Chain: entity.ChainSolana, Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	{Chain: entity.ChainSolana, Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Symbol: "USDT", Name: "Tether USD", Decimals: 6},
	{Chain: entity.ChainSolana, Address: "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", Symbol: "mSOL", Name: "Marinade staked SOL", Decimals: 9},
	{Chain: entity.ChainSolana, Address: "7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj", Symbol: "stSOL", Name: "Lido Staked SOL", Decimals: 9},
	{Chain: entity.ChainSolana, Address: "bSo13r4TkiE4KumL71LsHTPpL2euBYLFx6h9HP3piy1", Symbol: "bSOL", Name: "BlazeStake Staked SOL", Decimals: 9},
	{Chain: entity.ChainSolana, Address: "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn", Symbol: "jitoSOL", Name: "Jito Staked SOL", Decimals: 9},
	{Chain: entity.ChainSolana, Address: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Symbol: "JUP", Name: "Jupiter", Decimals: 6},
	{Chain: entity.ChainSolana, Address: "HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt3", Symbol: "PYTH", Name: "Pyth Network", Decimals: 6},
	{Chain: entity.ChainSolana, Address: "orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE", Symbol: "ORCA", Name: "Orca", Decimals: 6},
	{Chain: entity.ChainSolana, Address: "cbbtcf3aa214zXHbiAZQwf4122FBYbraNdFqgw4iMij", Symbol: "cbBTC", Name: "Coinbase Wrapped BTC", Decimals: 8},
}

// DefaultCatalogue returns a copy of the built-in token catalogue.
func DefaultCatalogue() entity.TokenCatalogue {
	return entity.TokenCatalogue{
		EVMSymbols:    append([]string(nil), DefaultEVMSymbols...),
		ScamContracts: append([]string(nil), DefaultScamContracts...),
		SolanaMints:   append([]entity.TokenInfo(nil), DefaultSolanaMints...),
	}
}

// CatalogueFileLoader implements port.TokenCatalogueProvider. Sections
// missing from the file keep their defaults.
type CatalogueFileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewCatalogueLoader creates a loader for filePath. An empty path yields the defaults.
func NewCatalogueLoader(filePath string, loggerInfo, loggerWarn func(msg string, args ...any)) port.TokenCatalogueProvider {
	return &CatalogueFileLoader{
		filePath:   filePath,
		loggerInfo: loggerInfo,
		loggerWarn: loggerWarn,
	}
}

// GetCatalogue reads and validates the catalogue file.
func (l *CatalogueFileLoader) GetCatalogue() (entity.TokenCatalogue, error) {
	catalogue := DefaultCatalogue()
	if l.filePath == "" {
		if l.loggerInfo != nil {
			l.loggerInfo("No token catalogue file configured, using built-in catalogue",
				"evm_symbols", len(catalogue.EVMSymbols),
				"solana_mints", len(catalogue.SolanaMints))
		}
		return catalogue, nil
	}

	var fromFile entity.TokenCatalogue
	if err := utils.LoadStructuredFile(l.filePath, &fromFile); err != nil {
		return entity.TokenCatalogue{}, fmt.Errorf("failed to load token catalogue %s: %w", l.filePath, err)
	}

	if len(fromFile.EVMSymbols) > 0 {
		catalogue.EVMSymbols = utils.UniqueStrings(fromFile.EVMSymbols)
	}
	if len(fromFile.ScamContracts) > 0 {
		catalogue.ScamContracts = make([]string, 0, len(fromFile.ScamContracts))
		for _, c := range utils.UniqueStrings(fromFile.ScamContracts) {
			catalogue.ScamContracts = append(catalogue.ScamContracts, strings.ToLower(c))
		}
	}
	if len(fromFile.SolanaMints) > 0 {
		catalogue.SolanaMints = l.validMints(fromFile.SolanaMints)
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Token catalogue loaded",
			"path", l.filePath,
			"evm_symbols", len(catalogue.EVMSymbols),
			"scam_contracts", len(catalogue.ScamContracts),
			"solana_mints", len(catalogue.SolanaMints))
	}
	return catalogue, nil
}

// validMints drops entries without a mint or symbol and duplicate mints.
func (l *CatalogueFileLoader) validMints(mints []entity.TokenInfo) []entity.TokenInfo {
	seen := make(map[string]struct{}, len(mints))
	out := make([]entity.TokenInfo, 0, len(mints))
	for _, m := range mints {
		m.Address = strings.TrimSpace(m.Address)
		m.Symbol = strings.TrimSpace(m.Symbol)
		if m.Address == "" || m.Symbol == "" {
			if l.loggerWarn != nil {
				l.loggerWarn("Skipping Solana mint without address or symbol", "path", l.filePath, "symbol", m.Symbol)
			}
			continue
		}
		if _, dup := seen[m.Address]; dup {
			continue
		}
		seen[m.Address] = struct{}{}
		m.Chain = entity.ChainSolana
		if m.Name == "" {
			m.Name = m.Symbol
		}
		out = append(out, m)
	}
	return out
}
