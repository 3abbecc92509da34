package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/utils"
)

// AddressStore handles address storage operations
type AddressStore struct {
	db *PebbleDB
	mu sync.Mutex // serialises read-modify-write cycles
}

// NewAddressStore creates a new AddressStore
func NewAddressStore(db *PebbleDB) *AddressStore {
	return &AddressStore{db: db}
}

// List returns every address ordered by creation time.
func (s *AddressStore) List(_ context.Context) ([]entity.Address, error) {
	addrs, err := scanAll[entity.Address](s.db, CFAddresses)
	if err != nil {
		return nil, err
	}
	sortAddresses(addrs)
	return addrs, nil
}

// Get retrieves an address by id
func (s *AddressStore) Get(_ context.Context, id string) (*entity.Address, error) {
	data, err := s.db.Get(CFAddresses, []byte(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var addr entity.Address
	if err := json.Unmarshal(data, &addr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address: %w", err)
	}
	return &addr, nil
}

// Save inserts or replaces an address
func (s *AddressStore) Save(_ context.Context, addr *entity.Address) error {
	data, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("failed to marshal address: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Put(CFAddresses, []byte(addr.ID), data)
}

// Delete removes an address
func (s *AddressStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Delete(CFAddresses, []byte(id))
}

// UpdatePositions rewrites only the balance fields of a stored address.
func (s *AddressStore) UpdatePositions(_ context.Context, id string, positions []entity.ChainPosition, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.db.Get(CFAddresses, []byte(id))
	if err != nil {
		return err
	}
	if data == nil {
		return apperrors.New(apperrors.CodeNotFound, "AddressStore.UpdatePositions", "Address not found")
	}
	var addr entity.Address
	if err := json.Unmarshal(data, &addr); err != nil {
		return fmt.Errorf("failed to unmarshal address: %w", err)
	}

	addr.Positions = positions
	addr.LastUpdated = &at
	addr.UpdatedAt = at
	out, err := json.Marshal(&addr)
	if err != nil {
		return fmt.Errorf("failed to marshal address: %w", err)
	}
	return s.db.Put(CFAddresses, []byte(id), out)
}

// RemoveTag detaches tagID from every address in one batch.
func (s *AddressStore) RemoveTag(_ context.Context, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs, err := scanAll[entity.Address](s.db, CFAddresses)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Destroy()

	changed := 0
	for i := range addrs {
		if !addrs[i].HasTag(tagID) {
			continue
		}
		addrs[i].TagIDs = utils.RemoveString(addrs[i].TagIDs, tagID)
		data, err := json.Marshal(&addrs[i])
		if err != nil {
			return fmt.Errorf("failed to marshal address: %w", err)
		}
		if err := s.db.PutBatch(batch, CFAddresses, []byte(addrs[i].ID), data); err != nil {
			return err
		}
		changed++
	}
	if changed == 0 {
		return nil
	}
	return s.db.WriteBatch(batch)
}

func sortAddresses(addrs []entity.Address) {
	sort.SliceStable(addrs, func(i, j int) bool {
		if addrs[i].CreatedAt.Equal(addrs[j].CreatedAt) {
			return addrs[i].ID < addrs[j].ID
		}
		return addrs[i].CreatedAt.Before(addrs[j].CreatedAt)
	})
}
