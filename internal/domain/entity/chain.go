package entity

import "strings"

// Chain identifies a blockchain an address can be tracked on.
type Chain string

const (
	ChainBitcoin  Chain = "bitcoin"
	ChainEthereum Chain = "ethereum"
	ChainArbitrum Chain = "arbitrum"
	ChainPolygon  Chain = "polygon"
	ChainOptimism Chain = "optimism"
	ChainBase     Chain = "base"
	ChainSolana   Chain = "solana"
)

// DefaultNetwork is used when an address is registered without a network.
const DefaultNetwork = "mainnet"

func (c Chain) String() string {
	return string(c)
}

// ChainInfo holds display and pricing details for a chain.
type ChainInfo struct {
	Chain        Chain  `json:"value"`
	Label        string `json:"label"`
	Color        string `json:"color"`
	NativeSymbol string `json:"symbol"`
	NativeName   string `json:"nativeName"`
}

var chainCatalogue = []ChainInfo{ //nolint:gochecknoglobals // static catalogue
	{Chain: ChainBitcoin, Label: "Bitcoin", Color: "bg-orange-500", NativeSymbol: "BTC", NativeName: "Bitcoin"},
	{Chain: ChainEthereum, Label: "Ethereum", Color: "bg-blue-500", NativeSymbol: "ETH", NativeName: "Ethereum"},
	{Chain: ChainArbitrum, Label: "Arbitrum", Color: "bg-blue-400", NativeSymbol: "ETH", NativeName: "Ethereum"},
	{Chain: ChainPolygon, Label: "Polygon", Color: "bg-purple-500", NativeSymbol: "POL", NativeName: "Polygon Ecosystem Token"},
	{Chain: ChainOptimism, Label: "Optimism", Color: "bg-red-500", NativeSymbol: "ETH", NativeName: "Ethereum"},
	{Chain: ChainBase, Label: "Base", Color: "bg-blue-600", NativeSymbol: "ETH", NativeName: "Ethereum"},
	{Chain: ChainSolana, Label: "Solana", Color: "bg-purple-600", NativeSymbol: "SOL", NativeName: "Solana"},
}

// EVMChains lists the networks an "ethereum" address is fanned out to, in position order.
var EVMChains = []Chain{ChainEthereum, ChainArbitrum, ChainPolygon, ChainOptimism, ChainBase} //nolint:gochecknoglobals

// ParseChain normalises user input into a known Chain.
func ParseChain(s string) (Chain, bool) {
	c := Chain(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsValid()
}

// IsValid reports whether c is one of the supported chains.
func (c Chain) IsValid() bool {
	for _, info := range chainCatalogue {
		if info.Chain == c {
			return true
		}
	}
	return false
}

// IsEVM reports whether c is served by the EVM adapter.
func (c Chain) IsEVM() bool {
	for _, evm := range EVMChains {
		if evm == c {
			return true
		}
	}
	return false
}

// Info returns the catalogue entry for c. Unknown chains get a grey
// placeholder labelled with the raw chain id and no native symbol.
func (c Chain) Info() ChainInfo {
	for _, info := range chainCatalogue {
		if info.Chain == c {
			return info
		}
	}
	return ChainInfo{Chain: c, Label: string(c), Color: "bg-gray-500"}
}

// NativeSymbol is shorthand for c.Info().NativeSymbol.
func (c Chain) NativeSymbol() string {
	return c.Info().NativeSymbol
}

// SupportedChains returns a copy of the chain catalogue.
func SupportedChains() []ChainInfo {
	out := make([]ChainInfo, len(chainCatalogue))
	copy(out, chainCatalogue)
	return out
}
