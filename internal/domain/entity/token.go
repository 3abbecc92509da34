package entity

// TokenBalance is a fungible token held by an address. Balance is a decimal
// string in display units so large-decimals tokens keep their precision.
type TokenBalance struct {
	ContractAddress string `json:"contractAddress"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	Balance         string `json:"balance"`
	Decimals        uint8  `json:"decimals"`
}

// TokenInfo holds the details of a supported token.
type TokenInfo struct {
	Chain    Chain  `json:"chain" yaml:"chain"`
	Address  string `json:"address" yaml:"address"`
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// TokenCatalogue is the set of tokens the adapters report on.
type TokenCatalogue struct {
	// EVMSymbols is the allow-list of ERC-20 symbols, compared case-insensitively.
	EVMSymbols []string `json:"evmSymbols" yaml:"evmSymbols"`
	// ScamContracts are lower-cased ERC-20 contracts that are always dropped.
	ScamContracts []string `json:"scamContracts" yaml:"scamContracts"`
	// SolanaMints maps supported SPL mints to their token details.
	SolanaMints []TokenInfo `json:"solanaMints" yaml:"solanaMints"`
}
