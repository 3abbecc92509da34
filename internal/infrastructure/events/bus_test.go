package events

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"portfolio_tracker/internal/domain/entity"
)

type recordingSink struct {
	events []entity.EventType
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event entity.RefreshEvent) error {
	s.events = append(s.events, event.Type)
	return s.err
}

func TestBus_PublishOrderAndUnsubscribe(t *testing.T) {
	sink := &recordingSink{}
	bus := NewBus(sink)
	ctx := context.Background()

	var seen []string
	unsubA := bus.Subscribe(func(_ context.Context, e entity.RefreshEvent) { seen = append(seen, "a:"+string(e.Type)) })
	bus.Subscribe(func(_ context.Context, e entity.RefreshEvent) { seen = append(seen, "b:"+string(e.Type)) })

	if err := bus.Publish(ctx, entity.RefreshEvent{Type: entity.EventRefreshStarted}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	unsubA()
	if err := bus.Publish(ctx, entity.RefreshEvent{Type: entity.EventRefreshCompleted}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	want := []string{"a:refresh.started", "b:refresh.started", "b:refresh.completed"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("handlers saw %v, want %v", seen, want)
	}
	if len(sink.events) != 2 {
		t.Errorf("sink saw %v, want 2 events", sink.events)
	}
}

func TestBus_SinkErrorReturned(t *testing.T) {
	boom := errors.New("boom")
	bus := NewBus(&recordingSink{err: boom}, &recordingSink{})

	err := bus.Publish(context.Background(), entity.RefreshEvent{Type: entity.EventAddressRefreshed})
	if !errors.Is(err, boom) {
		t.Errorf("Publish() error = %v, want %v", err, boom)
	}
}

func TestReportRecorder(t *testing.T) {
	rec := &ReportRecorder{}
	if _, ok := rec.Last(); ok {
		t.Fatalf("Last() ok before any report")
	}

	rec.Handle(context.Background(), entity.RefreshEvent{Type: entity.EventRefreshStarted})
	if _, ok := rec.Last(); ok {
		t.Errorf("Last() ok after refresh.started")
	}

	rec.Handle(context.Background(), entity.RefreshEvent{
		Type:   entity.EventRefreshCompleted,
		Report: &entity.RefreshReport{Succeeded: 3, Failed: 1},
	})
	got, ok := rec.Last()
	if !ok || got.Succeeded != 3 || got.Failed != 1 {
		t.Errorf("Last() = %+v, %v, want the completed report", got, ok)
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		prefix string
		typ    entity.EventType
		want   string
	}{
		{"portfolio.refresh", entity.EventAddressRefreshed, "portfolio.refresh.address.refreshed"},
		{"", entity.EventRefreshCompleted, "refresh.completed"},
	}
	for _, tt := range tests {
		if got := Subject(tt.prefix, tt.typ); got != tt.want {
			t.Errorf("Subject(%q, %q) = %q, want %q", tt.prefix, tt.typ, got, tt.want)
		}
	}
}
