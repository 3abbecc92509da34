package provider

import (
	"sync"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

type tokenCatalogueProviderImpl struct {
	loader port.TokenCatalogueProvider
	logger port.Logger

	mu    sync.Mutex
	cache *entity.TokenCatalogue
}

// NewTokenCatalogueProvider wraps loader and caches its result after the
// first successful load.
func NewTokenCatalogueProvider(loader port.TokenCatalogueProvider, logger port.Logger) port.TokenCatalogueProvider {
	return &tokenCatalogueProviderImpl{loader: loader, logger: logger}
}

// GetCatalogue implements port.TokenCatalogueProvider.
func (p *tokenCatalogueProviderImpl) GetCatalogue() (entity.TokenCatalogue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cache != nil {
		p.logger.Debug("Returning cached token catalogue")
		return *p.cache, nil
	}

	catalogue, err := p.loader.GetCatalogue()
	if err != nil {
		p.logger.Error("Failed to load token catalogue", "error", err)
		return entity.TokenCatalogue{}, err
	}
	p.cache = &catalogue
	p.logger.Info("Token catalogue loaded and cached",
		"evm_symbols", len(catalogue.EVMSymbols),
		"solana_mints", len(catalogue.SolanaMints))
	return catalogue, nil
}
