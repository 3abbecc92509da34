package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"portfolio_tracker/internal/domain/entity"
)

// TagStore handles tag storage operations
type TagStore struct {
	db *PebbleDB
}

// NewTagStore creates a new TagStore
func NewTagStore(db *PebbleDB) *TagStore {
	return &TagStore{db: db}
}

// List returns every tag ordered by name.
func (s *TagStore) List(_ context.Context) ([]entity.Tag, error) {
	tags, err := scanAll[entity.Tag](s.db, CFTags)
	if err != nil {
		return nil, err
	}
	sortTags(tags)
	return tags, nil
}

// Get retrieves a tag by id
func (s *TagStore) Get(_ context.Context, id string) (*entity.Tag, error) {
	data, err := s.db.Get(CFTags, []byte(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var tag entity.Tag
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tag: %w", err)
	}
	return &tag, nil
}

// Save inserts or replaces a tag
func (s *TagStore) Save(_ context.Context, tag *entity.Tag) error {
	data, err := json.Marshal(tag)
	if err != nil {
		return fmt.Errorf("failed to marshal tag: %w", err)
	}
	return s.db.Put(CFTags, []byte(tag.ID), data)
}

// Delete removes a tag
func (s *TagStore) Delete(_ context.Context, id string) error {
	return s.db.Delete(CFTags, []byte(id))
}

func sortTags(tags []entity.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		a, b := strings.ToLower(tags[i].Name), strings.ToLower(tags[j].Name)
		if a == b {
			return tags[i].ID < tags[j].ID
		}
		return a < b
	})
}
