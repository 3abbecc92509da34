package service

import (
	"context"
	"fmt"

	"portfolio_tracker/internal/app/port"
)

// SeedIfEmpty loads the seed into the stores when no address is stored yet.
// It returns the number of addresses written.
func SeedIfEmpty(
	ctx context.Context,
	seeds port.SeedProvider,
	addresses port.AddressRepository,
	tags port.TagRepository,
	l port.Logger,
) (int, error) {
	existing, err := addresses.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list addresses: %w", err)
	}
	if len(existing) > 0 {
		l.Debug("Store already populated, skipping seed", "addresses", len(existing))
		return 0, nil
	}

	seed, err := seeds.GetSeed()
	if err != nil {
		return 0, err
	}
	for i := range seed.Tags {
		if err := tags.Save(ctx, &seed.Tags[i]); err != nil {
			return 0, fmt.Errorf("save seed tag %s: %w", seed.Tags[i].Name, err)
		}
	}
	for i := range seed.Addresses {
		if err := addresses.Save(ctx, &seed.Addresses[i]); err != nil {
			return i, fmt.Errorf("save seed address %s: %w", seed.Addresses[i].Name, err)
		}
	}
	if len(seed.Addresses) > 0 {
		l.Info("Store seeded", "tags", len(seed.Tags), "addresses", len(seed.Addresses))
	}
	return len(seed.Addresses), nil
}
