package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// AddressService manages tracked addresses.
type AddressService interface {
	List(ctx context.Context) ([]entity.Address, error)
	Get(ctx context.Context, id string) (*entity.Address, error)
	// Create validates the address for its chain and stores it without positions.
	Create(ctx context.Context, in entity.AddressInput) (*entity.Address, error)
	Update(ctx context.Context, id string, patch entity.AddressPatch) (*entity.Address, error)
	Delete(ctx context.Context, id string) error
}

// TagService manages tags. Deleting a tag detaches it from every address.
type TagService interface {
	List(ctx context.Context) ([]entity.Tag, error)
	Create(ctx context.Context, in entity.TagInput) (*entity.Tag, error)
	Update(ctx context.Context, id string, in entity.TagInput) (*entity.Tag, error)
	Delete(ctx context.Context, id string) error
}
