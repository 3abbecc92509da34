package service

import (
	"context"
	"fmt"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	addresses             port.AddressRepository
	adapters              port.ChainAdapterProvider
	tokenPriceSvc         port.TokenPriceService
	events                port.EventPublisher
	logger                port.Logger
	maxConcurrentRoutines int
	now                   func() time.Time
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
func NewPortfolioService(
	addresses port.AddressRepository,
	adapters port.ChainAdapterProvider,
	tps port.TokenPriceService,
	events port.EventPublisher,
	l port.Logger,
	maxRoutines int,
) *PortfolioServiceImpl {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &PortfolioServiceImpl{
		addresses:             addresses,
		adapters:              adapters,
		tokenPriceSvc:         tps,
		events:                events,
		logger:                l,
		maxConcurrentRoutines: maxRoutines,
		now:                   time.Now,
	}
}

// RefreshAddress refetches one address and replaces its positions.
func (s *PortfolioServiceImpl) RefreshAddress(ctx context.Context, id string) (*entity.Address, error) {
	addr, err := s.addresses.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load address %s: %w", id, err)
	}
	if addr == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "PortfolioService.RefreshAddress", "Address not found")
	}

	result, err := s.refresh(ctx, addr)
	s.publish(ctx, resultEvent(result, s.now()))
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// refresh fetches and stores addr in place and reports the outcome.
func (s *PortfolioServiceImpl) refresh(ctx context.Context, addr *entity.Address) (entity.RefreshResult, error) {
	started := s.now()
	result := entity.RefreshResult{
		AddressID: addr.ID,
		Name:      addr.Name,
		Address:   addr.Address,
		Chain:     addr.Chain,
		Status:    entity.RefreshStatusSuccess,
	}

	err := s.fetchAndSave(ctx, addr)
	metrics.RefreshDuration.WithLabelValues(addr.Chain.String()).Observe(s.now().Sub(started).Seconds())
	if err != nil {
		result.Status = entity.RefreshStatusError
		result.Error = apperrors.MessageOf(err)
		if apperrors.Is(err, apperrors.CodeRateLimited) {
			result.Status = entity.RefreshStatusRateLimited
			if wait := apperrors.RetryAfterOf(err); wait > 0 {
				retryAt := s.now().Add(wait)
				result.RetryAt = &retryAt
			}
		}
		s.logger.Warn("Address refresh failed",
			"id", addr.ID,
			"chain", addr.Chain,
			"code", apperrors.CodeOf(err),
			"error", err)
	} else {
		s.logger.Debug("Address refreshed", "id", addr.ID, "chain", addr.Chain, "positions", len(addr.Positions))
	}
	metrics.RefreshTotal.WithLabelValues(addr.Chain.String(), string(result.Status)).Inc()
	return result, err
}

func (s *PortfolioServiceImpl) fetchAndSave(ctx context.Context, addr *entity.Address) error {
	adapter, err := s.adapters.AdapterFor(addr.Chain)
	if err != nil {
		return err
	}
	positions, err := adapter.FetchPositions(ctx, addr.Chain, addr.Network, addr.Address)
	if err != nil {
		return err
	}

	// Only balance fields are written; edits and deletes made during the
	// fetch win.
	now := s.now().UTC()
	if err := s.addresses.UpdatePositions(ctx, addr.ID, positions, now); err != nil {
		return fmt.Errorf("save positions %s: %w", addr.ID, err)
	}
	stored, err := s.addresses.Get(ctx, addr.ID)
	if err == nil && stored != nil {
		*addr = *stored
		return nil
	}
	addr.Positions = positions
	addr.LastUpdated = &now
	addr.UpdatedAt = now
	return nil
}

// RefreshAll refreshes every stored address with at most maxConcurrentRoutines
// in flight. A failing address never stops the others; the report is returned
// once all of them have settled.
func (s *PortfolioServiceImpl) RefreshAll(ctx context.Context) (entity.RefreshReport, error) {
	addrs, err := s.addresses.List(ctx)
	if err != nil {
		return entity.RefreshReport{}, fmt.Errorf("list addresses: %w", err)
	}

	report := entity.RefreshReport{
		StartedAt: s.now().UTC(),
		Results:   make([]entity.RefreshResult, len(addrs)),
	}
	s.publish(ctx, entity.RefreshEvent{Type: entity.EventRefreshStarted, OccurredAt: report.StartedAt})
	s.logger.Info("Refreshing all addresses", "count", len(addrs), "concurrency", s.maxConcurrentRoutines)

	var g errgroup.Group
	g.SetLimit(s.maxConcurrentRoutines)
	for i := range addrs {
		addr := &addrs[i]
		g.Go(func() error {
			result, _ := s.refresh(ctx, addr)
			report.Results[i] = result
			s.publish(ctx, resultEvent(result, s.now()))
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Results {
		switch r.Status {
		case entity.RefreshStatusSuccess:
			report.Succeeded++
		case entity.RefreshStatusRateLimited:
			report.RateLimited++
		default:
			report.Failed++
		}
	}
	report.CompletedAt = s.now().UTC()

	s.logger.Info("Refresh completed",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"rate_limited", report.RateLimited,
		"elapsed", report.CompletedAt.Sub(report.StartedAt).String())
	s.publish(ctx, entity.RefreshEvent{Type: entity.EventRefreshCompleted, OccurredAt: report.CompletedAt, Report: &report})
	return report, nil
}

// Summary prices every stored address. A price failure leaves the summary
// valued at $0 and is reported on the summary rather than as an error.
func (s *PortfolioServiceImpl) Summary(ctx context.Context) (entity.PortfolioSummary, error) {
	addrs, err := s.addresses.List(ctx)
	if err != nil {
		return entity.PortfolioSummary{}, fmt.Errorf("list addresses: %w", err)
	}

	var priceErr error
	prices := map[string]entity.PriceQuote{}
	if symbols := SymbolsOf(addrs); len(symbols) > 0 {
		prices, priceErr = s.tokenPriceSvc.GetPrices(ctx, symbols)
		if priceErr != nil {
			s.logger.Warn("Pricing failed, summary valued at zero", "error", priceErr)
			prices = map[string]entity.PriceQuote{}
		}
	}
	summary := CalculatePortfolioSummary(addrs, prices)
	if priceErr != nil {
		summary.PriceError = apperrors.MessageOf(priceErr)
		summary.PricesRateLimited = apperrors.Is(priceErr, apperrors.CodeRateLimited)
	}
	return summary, nil
}

// RecentTransactions returns the newest transactions across all addresses.
func (s *PortfolioServiceImpl) RecentTransactions(ctx context.Context, limit int) ([]entity.AddressTransaction, error) {
	addrs, err := s.addresses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return RecentTransactions(addrs, limit), nil
}

func (s *PortfolioServiceImpl) publish(ctx context.Context, event entity.RefreshEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish refresh event", "type", event.Type, "error", err)
	}
}

func resultEvent(result entity.RefreshResult, at time.Time) entity.RefreshEvent {
	eventType := entity.EventAddressRefreshed
	if result.Status != entity.RefreshStatusSuccess {
		eventType = entity.EventAddressRefreshFailed
	}
	return entity.RefreshEvent{Type: eventType, OccurredAt: at.UTC(), Result: &result}
}
