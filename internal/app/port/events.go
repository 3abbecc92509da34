package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// EventPublisher delivers refresh lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.RefreshEvent) error
}
