package events

import (
	"context"
	"errors"
	"testing"

	"replify_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSync_DispatchesToMatchingHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var got []string
	bus.Subscribe("a", HandlerFunc(func(_ context.Context, event Event) error {
		got = append(got, event.EventName())
		return nil
	}))
	bus.Subscribe("b", HandlerFunc(func(context.Context, Event) error {
		t.Fatalf("handler for another event must not fire")
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected one dispatch for %q, got %v", "a", got)
	}
}

func TestPublishSync_CombinesHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	first := errors.New("first failed")
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { return first }))
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { return nil }))
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error { return errors.New("third failed") }))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "a"})
	if err == nil {
		t.Fatalf("expected combined error")
	}
	if !errors.Is(err, first) {
		t.Fatalf("combined error must retain individual errors, got %v", err)
	}
}

func TestPublishSync_NoHandlersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "nobody"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
