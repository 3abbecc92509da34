package networkdefinition

import (
	"fmt"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

// NetworkDefinitionProvider provides the EVM network definitions an
// "ethereum" address is fanned out to.
type NetworkDefinitionProvider struct {
	logger  port.Logger
	defs    []entity.NetworkDefinition
	byChain map[entity.Chain]entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Chain:            entity.ChainEthereum,
		NativeSymbol:     "ETH",
		Decimals:         18,
		AlchemyNetwork:   "eth-mainnet",
		BlockExplorerURL: "https://etherscan.io",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Chain:            entity.ChainArbitrum,
		NativeSymbol:     "ETH",
		Decimals:         18,
		AlchemyNetwork:   "arb-mainnet",
		BlockExplorerURL: "https://arbiscan.io",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon PoS",
		Chain:            entity.ChainPolygon,
		NativeSymbol:     "POL",
		Decimals:         18,
		AlchemyNetwork:   "polygon-mainnet",
		BlockExplorerURL: "https://polygonscan.com",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "OP Mainnet",
		Chain:            entity.ChainOptimism,
		NativeSymbol:     "ETH",
		Decimals:         18,
		AlchemyNetwork:   "opt-mainnet",
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Chain:            entity.ChainBase,
		NativeSymbol:     "ETH",
		Decimals:         18,
		AlchemyNetwork:   "base-mainnet",
		BlockExplorerURL: "https://basescan.org",
	}
)

// allKnownDefinitions is kept in entity.EVMChains order.
var allKnownDefinitions = []entity.NetworkDefinition{Ethereum, Arbitrum, Polygon, Optimism, Base} //nolint:gochecknoglobals

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider. Each
// network's RPC URL is taken from overrides (keyed by chain) or else built
// from urlTemplate with the Alchemy network name and apiKey. Without a key
// and without an override the RPC URL stays empty.
func NewNetworkDefinitionProvider(log port.Logger, urlTemplate, apiKey string, overrides map[string]string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:  log,
		defs:    make([]entity.NetworkDefinition, 0, len(allKnownDefinitions)),
		byChain: make(map[entity.Chain]entity.NetworkDefinition, len(allKnownDefinitions)),
	}

	for _, def := range allKnownDefinitions {
		switch {
		case overrides[def.Chain.String()] != "":
			def.RPCURL = overrides[def.Chain.String()]
			p.logger.Debug("Using RPC override", "network", def.Name)
		case apiKey != "":
			def.RPCURL = fmt.Sprintf(urlTemplate, def.AlchemyNetwork, apiKey)
		default:
			p.logger.Warn("No RPC endpoint configured for network", "network", def.Name)
		}
		p.defs = append(p.defs, def)
		p.byChain[def.Chain] = def
	}

	p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Networks: %d", len(p.defs)))
	return p
}

// GetAllNetworkDefinitions returns the network definitions in fan-out order.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.defs))
	copy(defsCopy, p.defs)
	return defsCopy
}

// GetNetworkDefinition returns the definition serving chain.
func (p *NetworkDefinitionProvider) GetNetworkDefinition(chain entity.Chain) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.byChain[chain]
	return def, ok
}
