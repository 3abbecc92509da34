package entity

// NetworkDefinition holds the connection details for one EVM network.
type NetworkDefinition struct {
	ChainID          uint64 `json:"chainId" yaml:"chainId"`
	Name             string `json:"name" yaml:"name"`
	Chain            Chain  `json:"chain" yaml:"chain"`
	NativeSymbol     string `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         int32  `json:"decimals" yaml:"decimals"`
	AlchemyNetwork   string `json:"alchemyNetwork" yaml:"alchemyNetwork"` // e.g. "eth-mainnet"
	RPCURL           string `json:"rpcUrl,omitempty" yaml:"rpcUrl,omitempty"`
	BlockExplorerURL string `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}
