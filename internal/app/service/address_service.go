package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/utils"

	"github.com/google/uuid"
)

// addressServiceImpl implements port.AddressService
type addressServiceImpl struct {
	addresses port.AddressRepository
	tags      port.TagRepository
	adapters  port.ChainAdapterProvider
	logger    port.Logger
	now       func() time.Time
}

// NewAddressService creates the address manager.
func NewAddressService(
	addresses port.AddressRepository,
	tags port.TagRepository,
	adapters port.ChainAdapterProvider,
	l port.Logger,
) port.AddressService {
	return &addressServiceImpl{
		addresses: addresses,
		tags:      tags,
		adapters:  adapters,
		logger:    l,
		now:       time.Now,
	}
}

func (s *addressServiceImpl) List(ctx context.Context) ([]entity.Address, error) {
	return s.addresses.List(ctx)
}

func (s *addressServiceImpl) Get(ctx context.Context, id string) (*entity.Address, error) {
	addr, err := s.addresses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if addr == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "AddressService.Get", "Address not found")
	}
	return addr, nil
}

func (s *addressServiceImpl) Create(ctx context.Context, in entity.AddressInput) (*entity.Address, error) {
	const op = "AddressService.Create"

	name := strings.TrimSpace(in.Name)
	raw := strings.TrimSpace(in.Address)
	if name == "" || raw == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, op, "Name and address are required")
	}
	chain, ok := entity.ParseChain(in.Chain)
	if !ok {
		return nil, apperrors.New(apperrors.CodeInvalidInput, op, fmt.Sprintf("Unsupported chain: %s", in.Chain))
	}
	network := strings.TrimSpace(in.Network)
	if network == "" {
		network = entity.DefaultNetwork
	}

	adapter, err := s.adapters.AdapterFor(chain)
	if err != nil {
		return nil, err
	}
	if err := adapter.ValidateAddress(chain, network, raw); err != nil {
		return nil, err
	}
	tagIDs, err := s.knownTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	addr := &entity.Address{
		ID:          uuid.NewString(),
		Name:        name,
		Address:     raw,
		Chain:       chain,
		Network:     network,
		Description: strings.TrimSpace(in.Description),
		TagIDs:      tagIDs,
		Positions:   []entity.ChainPosition{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.addresses.Save(ctx, addr); err != nil {
		return nil, fmt.Errorf("save address: %w", err)
	}
	s.logger.Info("Address created", "id", addr.ID, "chain", chain, "name", name)
	return addr, nil
}

func (s *addressServiceImpl) Update(ctx context.Context, id string, patch entity.AddressPatch) (*entity.Address, error) {
	const op = "AddressService.Update"

	addr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeInvalidInput, op, "Name cannot be empty")
		}
		addr.Name = name
	}
	if patch.Network != nil {
		network := strings.TrimSpace(*patch.Network)
		if network == "" {
			network = entity.DefaultNetwork
		}
		if network != addr.Network {
			adapter, err := s.adapters.AdapterFor(addr.Chain)
			if err != nil {
				return nil, err
			}
			if err := adapter.ValidateAddress(addr.Chain, network, addr.Address); err != nil {
				return nil, err
			}
			addr.Network = network
		}
	}
	if patch.Description != nil {
		addr.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.TagIDs != nil {
		tagIDs, err := s.knownTags(ctx, *patch.TagIDs)
		if err != nil {
			return nil, err
		}
		addr.TagIDs = tagIDs
	}
	addr.UpdatedAt = s.now().UTC()

	if err := s.addresses.Save(ctx, addr); err != nil {
		return nil, fmt.Errorf("save address: %w", err)
	}
	return addr, nil
}

func (s *addressServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.addresses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	s.logger.Info("Address deleted", "id", id)
	return nil
}

// knownTags de-duplicates ids and rejects any that do not exist.
func (s *addressServiceImpl) knownTags(ctx context.Context, ids []string) ([]string, error) {
	ids = utils.UniqueStrings(ids)
	for _, id := range ids {
		tag, err := s.tags.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return nil, apperrors.New(apperrors.CodeInvalidInput, "AddressService.Tags", fmt.Sprintf("Unknown tag: %s", id))
		}
	}
	return ids, nil
}
