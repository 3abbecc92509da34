package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// TokenCatalogueProvider supplies the supported-token catalogue.
type TokenCatalogueProvider interface {
	GetCatalogue() (entity.TokenCatalogue, error)
}

// PriceProvider fetches quotes from an upstream aggregator keyed by the
// provider's own asset ids.
type PriceProvider interface {
	GetSimplePrices(ctx context.Context, ids []string) (map[string]entity.PriceQuote, error)
}

// TokenPriceService resolves USD prices for internal symbols.
type TokenPriceService interface {
	// GetPrices returns quotes keyed by the requested symbols. Symbols without
	// a provider id are absent from the result. A failed upstream call fails
	// the whole request.
	GetPrices(ctx context.Context, symbols []string) (map[string]entity.PriceQuote, error)

	// SupportsSymbol reports whether symbol has a provider id.
	SupportsSymbol(symbol string) bool
}
