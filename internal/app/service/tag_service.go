package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// tagServiceImpl implements port.TagService
type tagServiceImpl struct {
	tags      port.TagRepository
	addresses port.AddressRepository
	logger    port.Logger
	now       func() time.Time
}

// NewTagService creates the tag manager.
func NewTagService(tags port.TagRepository, addresses port.AddressRepository, l port.Logger) port.TagService {
	return &tagServiceImpl{tags: tags, addresses: addresses, logger: l, now: time.Now}
}

func (s *tagServiceImpl) List(ctx context.Context) ([]entity.Tag, error) {
	return s.tags.List(ctx)
}

func (s *tagServiceImpl) Create(ctx context.Context, in entity.TagInput) (*entity.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "TagService.Create", "Tag name is required")
	}
	existing, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = entity.TagColors[len(existing)%len(entity.TagColors)]
	}

	now := s.now().UTC()
	tag := &entity.Tag{ID: uuid.NewString(), Name: name, Color: color, CreatedAt: now, UpdatedAt: now}
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag: %w", err)
	}
	return tag, nil
}

func (s *tagServiceImpl) Update(ctx context.Context, id string, in entity.TagInput) (*entity.Tag, error) {
	const op = "TagService.Update"

	tag, err := s.tags.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, op, "Tag not found")
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		tag.Name = name
	}
	if color := strings.TrimSpace(in.Color); color != "" {
		tag.Color = color
	}
	tag.UpdatedAt = s.now().UTC()
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag: %w", err)
	}
	return tag, nil
}

func (s *tagServiceImpl) Delete(ctx context.Context, id string) error {
	tag, err := s.tags.Get(ctx, id)
	if err != nil {
		return err
	}
	if tag == nil {
		return apperrors.New(apperrors.CodeNotFound, "TagService.Delete", "Tag not found")
	}
	if err := s.addresses.RemoveTag(ctx, id); err != nil {
		return fmt.Errorf("detach tag %s: %w", id, err)
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	s.logger.Info("Tag deleted", "id", id, "name", tag.Name)
	return nil
}
