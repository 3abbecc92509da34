package client

import (
	"fmt"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"
)

// AdapterRegistry implements port.ChainAdapterProvider over a fixed set of adapters.
type AdapterRegistry struct {
	adapters map[entity.Chain]port.ChainAdapter
}

// NewAdapterRegistry indexes adapters by the chains they serve. A later
// adapter replaces an earlier one for the same chain.
func NewAdapterRegistry(adapters ...port.ChainAdapter) *AdapterRegistry {
	r := &AdapterRegistry{adapters: make(map[entity.Chain]port.ChainAdapter)}
	for _, a := range adapters {
		for _, chain := range a.Chains() {
			r.adapters[chain] = a
		}
	}
	return r
}

// AdapterFor implements port.ChainAdapterProvider.
func (r *AdapterRegistry) AdapterFor(chain entity.Chain) (port.ChainAdapter, error) {
	a, ok := r.adapters[chain]
	if !ok {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "AdapterRegistry.AdapterFor", fmt.Sprintf("unsupported chain %q", chain))
	}
	return a, nil
}
