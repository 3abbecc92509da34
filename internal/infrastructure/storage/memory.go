package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/utils"
)

// clone deep-copies v through its JSON form so callers never share slices
// with the store.
func clone[T any](v *T) (*T, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MemoryAddressStore keeps addresses in process memory.
type MemoryAddressStore struct {
	mu    sync.RWMutex
	items map[string]*entity.Address
}

func NewMemoryAddressStore() *MemoryAddressStore {
	return &MemoryAddressStore{items: make(map[string]*entity.Address)}
}

func (s *MemoryAddressStore) List(_ context.Context) ([]entity.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Address, 0, len(s.items))
	for _, a := range s.items {
		c, err := clone(a)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	sortAddresses(out)
	return out, nil
}

func (s *MemoryAddressStore) Get(_ context.Context, id string) (*entity.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return clone(a)
}

func (s *MemoryAddressStore) Save(_ context.Context, addr *entity.Address) error {
	c, err := clone(addr)
	if err != nil {
		return fmt.Errorf("failed to copy address: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[addr.ID] = c
	return nil
}

func (s *MemoryAddressStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *MemoryAddressStore) UpdatePositions(_ context.Context, id string, positions []entity.ChainPosition, at time.Time) error {
	copied, err := clone(&positions)
	if err != nil {
		return fmt.Errorf("failed to copy positions: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "MemoryAddressStore.UpdatePositions", "Address not found")
	}
	a.Positions = *copied
	a.LastUpdated = &at
	a.UpdatedAt = at
	return nil
}

func (s *MemoryAddressStore) RemoveTag(_ context.Context, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.HasTag(tagID) {
			a.TagIDs = utils.RemoveString(a.TagIDs, tagID)
		}
	}
	return nil
}

// MemoryTagStore keeps tags in process memory.
type MemoryTagStore struct {
	mu    sync.RWMutex
	items map[string]entity.Tag
}

func NewMemoryTagStore() *MemoryTagStore {
	return &MemoryTagStore{items: make(map[string]entity.Tag)}
}

func (s *MemoryTagStore) List(_ context.Context) ([]entity.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Tag, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t)
	}
	sortTags(out)
	return out, nil
}

func (s *MemoryTagStore) Get(_ context.Context, id string) (*entity.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemoryTagStore) Save(_ context.Context, tag *entity.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tag.ID] = *tag
	return nil
}

func (s *MemoryTagStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}
