package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/infrastructure/storage"
	"portfolio_tracker/internal/pkg/apperrors"
)

type fakeAdapter struct {
	mu        sync.Mutex
	positions map[string][]entity.ChainPosition
	errs      map[string]error
	calls     int
}

func (f *fakeAdapter) Chains() []entity.Chain {
	return []entity.Chain{entity.ChainBitcoin, entity.ChainEthereum, entity.ChainSolana}
}

func (f *fakeAdapter) ValidateAddress(_ entity.Chain, _ string, address string) error {
	if address == "bad" {
		return apperrors.New(apperrors.CodeInvalidInput, "Validate", "Invalid address")
	}
	return nil
}

func (f *fakeAdapter) FetchPositions(_ context.Context, _ entity.Chain, _ string, address string) ([]entity.ChainPosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[address]; err != nil {
		return nil, err
	}
	return f.positions[address], nil
}

func (f *fakeAdapter) AdapterFor(entity.Chain) (port.ChainAdapter, error) {
	return f, nil
}

type fakePrices struct {
	quotes map[string]entity.PriceQuote
	err    error
}

func (f fakePrices) GetPrices(_ context.Context, symbols []string) (map[string]entity.PriceQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]entity.PriceQuote)
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

func (f fakePrices) SupportsSymbol(string) bool { return true }

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.RefreshEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e entity.RefreshEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []entity.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entity.EventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func seed(t *testing.T, repo port.AddressRepository, addrs ...entity.Address) {
	t.Helper()
	for i := range addrs {
		if addrs[i].CreatedAt.IsZero() {
			addrs[i].CreatedAt = time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC)
		}
		if err := repo.Save(context.Background(), &addrs[i]); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
}

func TestPortfolioService_RefreshAddress(t *testing.T) {
	repo := storage.NewMemoryAddressStore()
	seed(t, repo, entity.Address{ID: "btc", Address: "bc1", Chain: entity.ChainBitcoin, Positions: []entity.ChainPosition{{Chain: entity.ChainBitcoin, Balance: 9}}})

	adapter := &fakeAdapter{positions: map[string][]entity.ChainPosition{
		"bc1": {{Chain: entity.ChainBitcoin, Balance: 0.5}},
	}}
	pub := &recordingPublisher{}
	svc := NewPortfolioService(repo, adapter, fakePrices{}, pub, nopLogger{}, 2)

	got, err := svc.RefreshAddress(context.Background(), "btc")
	if err != nil {
		t.Fatalf("RefreshAddress() error = %v", err)
	}
	if got.Balance() != 0.5 || got.LastUpdated == nil {
		t.Errorf("RefreshAddress() = %+v, want balance 0.5 and lastUpdated set", got)
	}
	stored, _ := repo.Get(context.Background(), "btc")
	if len(stored.Positions) != 1 || stored.Balance() != 0.5 {
		t.Errorf("stored positions = %+v, want replaced wholesale", stored.Positions)
	}
	if types := pub.types(); len(types) != 1 || types[0] != entity.EventAddressRefreshed {
		t.Errorf("events = %v, want [address.refreshed]", types)
	}
}

func TestPortfolioService_RefreshAddressErrors(t *testing.T) {
	repo := storage.NewMemoryAddressStore()
	seed(t, repo, entity.Address{ID: "eth", Address: "0xlimited", Chain: entity.ChainEthereum})

	adapter := &fakeAdapter{errs: map[string]error{
		"0xlimited": apperrors.RateLimited("Fetch", "Rate limit exceeded", time.Minute),
	}}
	pub := &recordingPublisher{}
	svc := NewPortfolioService(repo, adapter, fakePrices{}, pub, nopLogger{}, 1)

	if _, err := svc.RefreshAddress(context.Background(), "missing"); !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Errorf("RefreshAddress(missing) error = %v, want not found", err)
	}

	_, err := svc.RefreshAddress(context.Background(), "eth")
	if !apperrors.Is(err, apperrors.CodeRateLimited) {
		t.Fatalf("RefreshAddress() error = %v, want rate limited", err)
	}
	if len(pub.events) != 1 || pub.events[0].Type != entity.EventAddressRefreshFailed {
		t.Fatalf("events = %v, want one address.refresh_failed", pub.types())
	}
	res := pub.events[0].Result
	if res.Status != entity.RefreshStatusRateLimited || res.RetryAt == nil {
		t.Errorf("result = %+v, want rate_limited with retryAt", res)
	}
	stored, _ := repo.Get(context.Background(), "eth")
	if stored.LastUpdated != nil {
		t.Errorf("failed refresh must not stamp lastUpdated")
	}
}

func TestPortfolioService_RefreshAll(t *testing.T) {
	repo := storage.NewMemoryAddressStore()
	seed(t, repo,
		entity.Address{ID: "1", Address: "ok1", Chain: entity.ChainBitcoin},
		entity.Address{ID: "2", Address: "down", Chain: entity.ChainSolana},
		entity.Address{ID: "3", Address: "limited", Chain: entity.ChainEthereum},
		entity.Address{ID: "4", Address: "ok2", Chain: entity.ChainBitcoin},
	)
	adapter := &fakeAdapter{
		positions: map[string][]entity.ChainPosition{
			"ok1": {{Chain: entity.ChainBitcoin, Balance: 1}},
			"ok2": {{Chain: entity.ChainBitcoin, Balance: 2}},
		},
		errs: map[string]error{
			"down":    apperrors.New(apperrors.CodeUnavailable, "Fetch", "Solana provider not configured"),
			"limited": apperrors.RateLimited("Fetch", "Rate limit exceeded", 0),
		},
	}
	pub := &recordingPublisher{}
	svc := NewPortfolioService(repo, adapter, fakePrices{}, pub, nopLogger{}, 2)

	report, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 1 || report.RateLimited != 1 {
		t.Errorf("report totals = %d/%d/%d, want 2/1/1", report.Succeeded, report.Failed, report.RateLimited)
	}
	if adapter.calls != 4 {
		t.Errorf("adapter calls = %d, want 4", adapter.calls)
	}
	wantStatus := []entity.RefreshStatus{
		entity.RefreshStatusSuccess,
		entity.RefreshStatusError,
		entity.RefreshStatusRateLimited,
		entity.RefreshStatusSuccess,
	}
	for i, r := range report.Results {
		if r.Status != wantStatus[i] {
			t.Errorf("Results[%d].Status = %s, want %s", i, r.Status, wantStatus[i])
		}
	}
	if report.Results[1].Error != "Solana provider not configured" {
		t.Errorf("Results[1].Error = %q", report.Results[1].Error)
	}

	types := pub.types()
	if len(types) != 6 || types[0] != entity.EventRefreshStarted || types[5] != entity.EventRefreshCompleted {
		t.Errorf("events = %v, want started, 4 results, completed", types)
	}
	if last := pub.events[5]; last.Report == nil || last.Report.Succeeded != 2 {
		t.Errorf("completed event report = %+v", last.Report)
	}
}

func TestPortfolioService_Summary(t *testing.T) {
	repo := storage.NewMemoryAddressStore()
	seed(t, repo, entity.Address{
		ID:        "btc",
		Chain:     entity.ChainBitcoin,
		Positions: []entity.ChainPosition{{Chain: entity.ChainBitcoin, Balance: 0.5}},
	})
	ctx := context.Background()

	svc := NewPortfolioService(repo, &fakeAdapter{}, fakePrices{quotes: map[string]entity.PriceQuote{
		"BTC": {Symbol: "BTC", Price: 60000, Change24h: 2},
	}}, nil, nopLogger{}, 1)
	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if !summary.PricesOK() {
		t.Errorf("PriceError = %q, want empty", summary.PriceError)
	}
	if summary.TotalValue != 30000 {
		t.Errorf("TotalValue = %v, want 30000", summary.TotalValue)
	}

	tests := []struct {
		name            string
		err             error
		wantRateLimited bool
	}{
		{name: "rate limited", err: apperrors.RateLimited("GetPrices", "slow down", 0), wantRateLimited: true},
		{name: "unavailable", err: apperrors.New(apperrors.CodeUnavailable, "GetPrices", "provider down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPortfolioService(repo, &fakeAdapter{}, fakePrices{err: tt.err}, nil, nopLogger{}, 1)
			summary, err := svc.Summary(ctx)
			if err != nil {
				t.Fatalf("Summary() error = %v", err)
			}
			if summary.PriceError != apperrors.MessageOf(tt.err) {
				t.Errorf("PriceError = %q, want %q", summary.PriceError, apperrors.MessageOf(tt.err))
			}
			if summary.PricesRateLimited != tt.wantRateLimited {
				t.Errorf("PricesRateLimited = %v, want %v", summary.PricesRateLimited, tt.wantRateLimited)
			}
			if summary.TotalValue != 0 || len(summary.NativeAssets) != 1 {
				t.Errorf("summary = %+v, want positions valued at zero", summary)
			}
		})
	}
}

// gatedAdapter holds FetchPositions until release is closed.
type gatedAdapter struct {
	*fakeAdapter
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedAdapter(positions map[string][]entity.ChainPosition) *gatedAdapter {
	return &gatedAdapter{
		fakeAdapter: &fakeAdapter{positions: positions},
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedAdapter) FetchPositions(ctx context.Context, chain entity.Chain, network, address string) ([]entity.ChainPosition, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.fakeAdapter.FetchPositions(ctx, chain, network, address)
}

func (g *gatedAdapter) AdapterFor(entity.Chain) (port.ChainAdapter, error) {
	return g, nil
}

func TestPortfolioService_RefreshKeepsConcurrentEdits(t *testing.T) {
	rename := func(t *testing.T, repo port.AddressRepository) {
		addr, err := repo.Get(context.Background(), "btc")
		if err != nil || addr == nil {
			t.Fatalf("Get() = %v, %v", addr, err)
		}
		addr.Name = "Renamed"
		addr.Network = "testnet"
		addr.TagIDs = []string{"t2"}
		if err := repo.Save(context.Background(), addr); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	remove := func(t *testing.T, repo port.AddressRepository) {
		if err := repo.Delete(context.Background(), "btc"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	}

	tests := []struct {
		name       string
		all        bool
		edit       func(t *testing.T, repo port.AddressRepository)
		wantStored bool
	}{
		{name: "rename during refresh", edit: rename, wantStored: true},
		{name: "delete during refresh", edit: remove},
		{name: "rename during refresh all", all: true, edit: rename, wantStored: true},
		{name: "delete during refresh all", all: true, edit: remove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			repo := storage.NewMemoryAddressStore()
			seed(t, repo, entity.Address{
				ID:        "btc",
				Name:      "Cold",
				Address:   "bc1",
				Chain:     entity.ChainBitcoin,
				Network:   entity.DefaultNetwork,
				TagIDs:    []string{"t1"},
				Positions: []entity.ChainPosition{{Chain: entity.ChainBitcoin, Balance: 9}},
			})
			adapter := newGatedAdapter(map[string][]entity.ChainPosition{
				"bc1": {{Chain: entity.ChainBitcoin, Balance: 0.5}},
			})
			svc := NewPortfolioService(repo, adapter, fakePrices{}, nil, nopLogger{}, 1)

			type outcome struct {
				addr   *entity.Address
				report entity.RefreshReport
				err    error
			}
			done := make(chan outcome, 1)
			go func() {
				if tt.all {
					report, err := svc.RefreshAll(ctx)
					done <- outcome{report: report, err: err}
					return
				}
				addr, err := svc.RefreshAddress(ctx, "btc")
				done <- outcome{addr: addr, err: err}
			}()

			select {
			case <-adapter.started:
			case <-ctx.Done():
				t.Fatal("FetchPositions was never called")
			}
			tt.edit(t, repo)
			close(adapter.release)
			got := <-done

			stored, err := repo.Get(context.Background(), "btc")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !tt.wantStored {
				if stored != nil {
					t.Fatalf("deleted address came back: %+v", stored)
				}
				if tt.all {
					if got.err != nil || len(got.report.Results) != 1 || got.report.Results[0].Status != entity.RefreshStatusError {
						t.Errorf("RefreshAll() = %+v, %v, want one failed result", got.report, got.err)
					}
				} else if !apperrors.Is(got.err, apperrors.CodeNotFound) {
					t.Errorf("RefreshAddress() error = %v, want not found", got.err)
				}
				return
			}

			if got.err != nil {
				t.Fatalf("refresh error = %v", got.err)
			}
			if stored == nil {
				t.Fatal("Get() = nil, want stored address")
			}
			if stored.Name != "Renamed" || stored.Network != "testnet" || len(stored.TagIDs) != 1 || stored.TagIDs[0] != "t2" {
				t.Errorf("stored = %+v, want edit kept", stored)
			}
			if stored.Balance() != 0.5 || stored.LastUpdated == nil {
				t.Errorf("stored balance = %v, lastUpdated = %v, want refreshed", stored.Balance(), stored.LastUpdated)
			}
			if !tt.all && (got.addr == nil || got.addr.Name != "Renamed" || got.addr.Balance() != 0.5) {
				t.Errorf("RefreshAddress() = %+v, want current record", got.addr)
			}
		})
	}
}

func TestPortfolioService_RecentTransactions(t *testing.T) {
	repo := storage.NewMemoryAddressStore()
	seed(t, repo, entity.Address{
		ID:    "btc",
		Name:  "Cold",
		Chain: entity.ChainBitcoin,
		Positions: []entity.ChainPosition{{
			Chain:            entity.ChainBitcoin,
			LastTransactions: []entity.Transaction{{Hash: "h1", Timestamp: 1}, {Hash: "h2", Timestamp: 2}},
		}},
	})
	svc := NewPortfolioService(repo, &fakeAdapter{}, fakePrices{}, nil, nopLogger{}, 1)

	got, err := svc.RecentTransactions(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecentTransactions() error = %v", err)
	}
	if len(got) != 1 || got[0].Hash != "h2" || got[0].AddressName != "Cold" {
		t.Errorf("RecentTransactions() = %+v, want h2 from Cold", got)
	}
}
