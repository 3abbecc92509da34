package provider

import (
	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/infrastructure/seedloader"
)

type seedProviderImpl struct {
	source port.SeedProvider
	logger port.Logger
}

// NewSeedProvider picks the seed source: the seed file when one is
// configured, the demo data set in demo mode, nothing otherwise.
func NewSeedProvider(filePath string, demoMode bool, logger port.Logger) port.SeedProvider {
	var source port.SeedProvider
	switch {
	case filePath != "":
		source = seedloader.NewSeedFileLoader(filePath, logger.Info)
	case demoMode:
		source = seedloader.NewDemoProvider()
	}
	return &seedProviderImpl{source: source, logger: logger}
}

// GetSeed implements port.SeedProvider.
func (p *seedProviderImpl) GetSeed() (entity.Seed, error) {
	if p.source == nil {
		p.logger.Debug("No seed source configured")
		return entity.Seed{}, nil
	}
	seed, err := p.source.GetSeed()
	if err != nil {
		p.logger.Error("Failed to load seed", "error", err)
		return entity.Seed{}, err
	}
	return seed, nil
}
