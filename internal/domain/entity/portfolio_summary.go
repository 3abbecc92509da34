package entity

// AssetType distinguishes a chain's base currency from tokens built on it.
type AssetType string

const (
	AssetTypeNative AssetType = "native"
	AssetTypeToken  AssetType = "token"
)

// PriceQuote is the USD price and 24h percent change for a symbol.
type PriceQuote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
}

// PortfolioAsset is a single priced position.
type PortfolioAsset struct {
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	Balance    float64   `json:"balance"`
	USDValue   float64   `json:"usdValue"`
	Percentage float64   `json:"percentage"`
	Chain      Chain     `json:"chain"`
	Type       AssetType `json:"type"`
}

// ChainAllocation is the share of the portfolio held on one chain.
type ChainAllocation struct {
	Chain      Chain            `json:"chain"`
	Label      string           `json:"label"`
	Color      string           `json:"color"`
	USDValue   float64          `json:"usdValue"`
	Percentage float64          `json:"percentage"`
	Assets     []PortfolioAsset `json:"assets"`
}

// HoldingChain is one chain's contribution to a TokenHolding.
type HoldingChain struct {
	Chain    Chain   `json:"chain"`
	Balance  float64 `json:"balance"`
	USDValue float64 `json:"usdValue"`
}

// TokenHolding is an asset aggregated across every address and chain.
type TokenHolding struct {
	Symbol       string         `json:"symbol"`
	Name         string         `json:"name"`
	TotalBalance float64        `json:"totalBalance"`
	USDValue     float64        `json:"usdValue"`
	Percentage   float64        `json:"percentage"`
	Chains       []HoldingChain `json:"chains"`
}

// PortfolioSummary is derived from addresses and prices on demand and never stored.
type PortfolioSummary struct {
	TotalValue       float64           `json:"totalValue"`
	Change24h        float64           `json:"change24h"`
	TotalAssets      int               `json:"totalAssets"`
	ChainAllocations []ChainAllocation `json:"chainAllocations"`
	TopTokens        []TokenHolding    `json:"topTokens"`
	NativeAssets     []PortfolioAsset  `json:"nativeAssets"`

	// PriceError is set when prices could not be fetched and every value is $0.
	PriceError        string `json:"-"`
	PricesRateLimited bool   `json:"-"`
}

// PricesOK reports whether the summary was valued with live prices.
func (s PortfolioSummary) PricesOK() bool {
	return s.PriceError == ""
}
