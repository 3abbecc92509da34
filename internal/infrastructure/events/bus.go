package events

import (
	"context"
	"errors"
	"sync"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

// Handler receives events published on a Bus.
type Handler func(ctx context.Context, event entity.RefreshEvent)

// Bus is an in-process publisher. Handlers run synchronously in subscription
// order, then the event is forwarded to every sink.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
	order    []int
	sinks    []port.EventPublisher
}

// NewBus creates a bus forwarding to sinks, e.g. a NATSPublisher.
func NewBus(sinks ...port.EventPublisher) *Bus {
	return &Bus{handlers: make(map[int]Handler), sinks: sinks}
}

// Subscribe registers h and returns a function removing it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish implements port.EventPublisher. Sink errors are joined; handlers
// cannot fail.
func (b *Bus) Publish(ctx context.Context, event entity.RefreshEvent) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	sinks := b.sinks
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}

	var errs []error
	for _, sink := range sinks {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReportRecorder keeps the report of the latest completed refresh-all.
type ReportRecorder struct {
	mu     sync.RWMutex
	report *entity.RefreshReport
}

// Handle is a Handler recording refresh.completed events.
func (r *ReportRecorder) Handle(_ context.Context, event entity.RefreshEvent) {
	if event.Type != entity.EventRefreshCompleted || event.Report == nil {
		return
	}
	report := *event.Report
	r.mu.Lock()
	r.report = &report
	r.mu.Unlock()
}

// Last returns the most recent report, false before the first refresh-all completes.
func (r *ReportRecorder) Last() (entity.RefreshReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.report == nil {
		return entity.RefreshReport{}, false
	}
	return *r.report, true
}
