package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mathquest/core"
)

func TestEventBusSyncDispatch(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	defer bus.Close()

	var got []core.Event
	unsub := bus.Subscribe(core.EventBadgeAwarded, func(_ context.Context, ev core.Event) {
		got = append(got, ev)
	})
	bus.Subscribe(core.EventTrophyAwarded, func(_ context.Context, ev core.Event) {
		t.Errorf("wrong type delivered: %+v", ev)
	})

	bus.Publish(context.Background(), core.NewBadgeAwarded("kid-1", "first-steps"))
	if len(got) != 1 || got[0].ItemID != "first-steps" {
		t.Fatalf("got = %+v, want one first-steps event", got)
	}

	unsub()
	bus.Publish(context.Background(), core.NewBadgeAwarded("kid-1", "speed-demon"))
	if len(got) != 1 {
		t.Fatalf("handler called after unsubscribe: %+v", got)
	}
}

func TestEventBusAsyncDispatch(t *testing.T) {
	bus := NewEventBus(DispatchAsync)
	defer bus.Close()

	const n = 50
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	bus.Subscribe(core.EventCoinsChanged, func(_ context.Context, _ core.Event) {
		count.Add(1)
		wg.Done()
	})

	for i := 0; i < n; i++ {
		bus.Publish(context.Background(), core.NewCoinsChanged("kid-1", 1, int64(i), core.TxReward))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("async dispatch delivered %d of %d events", count.Load(), n)
	}
}
