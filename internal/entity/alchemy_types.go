package entity

// AlchemyTokenBalance is one entry of alchemy_getTokenBalances. TokenBalance
// is a hex-encoded raw amount.
type AlchemyTokenBalance struct {
	ContractAddress string  `json:"contractAddress"`
	TokenBalance    string  `json:"tokenBalance"`
	Error           *string `json:"error,omitempty"`
}

// AlchemyTokenBalancesResult is the result of alchemy_getTokenBalances.
type AlchemyTokenBalancesResult struct {
	Address       string                `json:"address"`
	TokenBalances []AlchemyTokenBalance `json:"tokenBalances"`
}

// AlchemyTokenMetadata is the result of alchemy_getTokenMetadata. Decimals
// is null for contracts that do not expose it.
type AlchemyTokenMetadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals *int   `json:"decimals"`
	Logo     string `json:"logo,omitempty"`
}

// AlchemyAssetTransfersParams is the single parameter of alchemy_getAssetTransfers.
type AlchemyAssetTransfersParams struct {
	FromBlock        string   `json:"fromBlock"`
	ToBlock          string   `json:"toBlock"`
	FromAddress      string   `json:"fromAddress,omitempty"`
	ToAddress        string   `json:"toAddress,omitempty"`
	Category         []string `json:"category"`
	Order            string   `json:"order"`
	MaxCount         string   `json:"maxCount"`
	WithMetadata     bool     `json:"withMetadata"`
	ExcludeZeroValue bool     `json:"excludeZeroValue"`
}

// AlchemyTransferMetadata carries the block timestamp when withMetadata is set.
type AlchemyTransferMetadata struct {
	BlockTimestamp string `json:"blockTimestamp"` // RFC 3339
}

// AlchemyAssetTransfer is one transfer returned by alchemy_getAssetTransfers.
type AlchemyAssetTransfer struct {
	BlockNum string                   `json:"blockNum"`
	Hash     string                   `json:"hash"`
	From     string                   `json:"from"`
	To       string                   `json:"to"`
	Value    *float64                 `json:"value"`
	Asset    string                   `json:"asset"`
	Category string                   `json:"category"`
	Metadata *AlchemyTransferMetadata `json:"metadata,omitempty"`
}

// AlchemyAssetTransfersResult is the result of alchemy_getAssetTransfers.
type AlchemyAssetTransfersResult struct {
	Transfers []AlchemyAssetTransfer `json:"transfers"`
	PageKey   string                 `json:"pageKey,omitempty"`
}
