package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadboard_backend/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.NewDiscard())
	calls := 0
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		calls++
		return nil
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	}))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
}

func TestPublishRunsHandlersAfterContextCancel(t *testing.T) {
	bus := NewInMemoryBus(logger.NewDiscard())
	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, _ Event) error {
		defer wg.Done()
		if ctx.Err() != nil {
			t.Errorf("handler context should not inherit cancellation")
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent()})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("handler did not run")
	}
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	bus := NewInMemoryBus(logger.NewDiscard())
	done := make(chan struct{})
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		panic("handler bug")
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		close(done)
		return nil
	}))

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second handler did not run")
	}
}

func TestNewBaseEventStampsIDs(t *testing.T) {
	a, b := NewBaseEvent(), NewBaseEvent()
	if a.EventID() == b.EventID() {
		t.Fatalf("expected distinct event ids")
	}
	if a.OccurredAt().Location() != time.UTC {
		t.Fatalf("expected UTC timestamp")
	}
}
