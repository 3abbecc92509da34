package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// PortfolioService coordinates refreshes and builds summaries.
type PortfolioService interface {
	// RefreshAddress refetches one address and stores the new positions.
	RefreshAddress(ctx context.Context, id string) (*entity.Address, error)

	// RefreshAll refreshes every stored address and returns once all have settled.
	RefreshAll(ctx context.Context) (entity.RefreshReport, error)

	// Summary prices every stored address. A price failure is carried on
	// the summary in PriceError and never fails the call.
	Summary(ctx context.Context) (entity.PortfolioSummary, error)

	// RecentTransactions returns the newest transactions across all addresses.
	RecentTransactions(ctx context.Context, limit int) ([]entity.AddressTransaction, error)
}
