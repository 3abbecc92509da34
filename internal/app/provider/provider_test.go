package provider

import (
	"errors"
	"testing"

	"portfolio_tracker/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) GetCatalogue() (entity.TokenCatalogue, error) {
	l.calls++
	if l.err != nil {
		return entity.TokenCatalogue{}, l.err
	}
	return entity.TokenCatalogue{EVMSymbols: []string{"USDC"}}, nil
}

func TestTokenCatalogueProvider_Caches(t *testing.T) {
	loader := &countingLoader{}
	p := NewTokenCatalogueProvider(loader, nopLogger{})

	for i := 0; i < 3; i++ {
		got, err := p.GetCatalogue()
		if err != nil || len(got.EVMSymbols) != 1 {
			t.Fatalf("GetCatalogue() = %+v, %v", got, err)
		}
	}
	if loader.calls != 1 {
		t.Errorf("loader calls = %d, want 1", loader.calls)
	}
}

func TestTokenCatalogueProvider_RetriesAfterError(t *testing.T) {
	loader := &countingLoader{err: errors.New("boom")}
	p := NewTokenCatalogueProvider(loader, nopLogger{})

	if _, err := p.GetCatalogue(); err == nil {
		t.Fatalf("GetCatalogue() error = nil, want boom")
	}
	loader.err = nil
	if _, err := p.GetCatalogue(); err != nil {
		t.Fatalf("GetCatalogue() error = %v", err)
	}
	if loader.calls != 2 {
		t.Errorf("loader calls = %d, want 2", loader.calls)
	}
}

func TestSeedProvider(t *testing.T) {
	none, err := NewSeedProvider("", false, nopLogger{}).GetSeed()
	if err != nil || len(none.Addresses) != 0 {
		t.Errorf("GetSeed() without source = %+v, %v, want empty", none, err)
	}

	demo, err := NewSeedProvider("", true, nopLogger{}).GetSeed()
	if err != nil || len(demo.Addresses) == 0 {
		t.Errorf("GetSeed() in demo mode = %d addresses, %v, want demo data", len(demo.Addresses), err)
	}

	if _, err := NewSeedProvider("/does/not/exist.yaml", true, nopLogger{}).GetSeed(); err == nil {
		t.Errorf("GetSeed() with missing file error = nil, want error")
	}
}
