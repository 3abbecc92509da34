package port

import (
	"context"
	"time"

	"portfolio_tracker/internal/domain/entity"
)

// AddressRepository persists Address records. Get returns (nil, nil) when
// the id is unknown.
type AddressRepository interface {
	List(ctx context.Context) ([]entity.Address, error)
	Get(ctx context.Context, id string) (*entity.Address, error)
	Save(ctx context.Context, address *entity.Address) error
	Delete(ctx context.Context, id string) error
	// UpdatePositions replaces the positions of a stored address and stamps
	// it with at, leaving every other field as currently stored. It fails
	// with apperrors.CodeNotFound when the address no longer exists.
	UpdatePositions(ctx context.Context, id string, positions []entity.ChainPosition, at time.Time) error
	// RemoveTag detaches tagID from every address.
	RemoveTag(ctx context.Context, tagID string) error
}

// TagRepository persists Tag records. Get returns (nil, nil) when the id is unknown.
type TagRepository interface {
	List(ctx context.Context) ([]entity.Tag, error)
	Get(ctx context.Context, id string) (*entity.Tag, error)
	Save(ctx context.Context, tag *entity.Tag) error
	Delete(ctx context.Context, id string) error
}

// SeedProvider supplies tags and addresses to load into an empty store.
type SeedProvider interface {
	GetSeed() (entity.Seed, error)
}
