package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// ChainAdapter turns a provider's raw balance, token and transaction data for
// one address into ChainPositions.
type ChainAdapter interface {
	// Chains lists the chains this adapter serves.
	Chains() []entity.Chain

	// ValidateAddress checks that address is well-formed for chain and network.
	ValidateAddress(chain entity.Chain, network, address string) error

	// FetchPositions fetches the current state of address. An "ethereum" address
	// yields one position per EVM network; every other chain yields one.
	FetchPositions(ctx context.Context, chain entity.Chain, network, address string) ([]entity.ChainPosition, error)
}

// ChainAdapterProvider resolves the adapter serving a chain.
type ChainAdapterProvider interface {
	AdapterFor(chain entity.Chain) (ChainAdapter, error)
}

// NetworkDefinitionProvider defines the interface for providing EVM network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all available network definitions in fan-out order.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinition returns the definition serving chain.
	GetNetworkDefinition(chain entity.Chain) (entity.NetworkDefinition, bool)
}
