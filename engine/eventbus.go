package engine

import (
	"context"
	"sync"

	"mathquest/core"
)

type DispatchMode int

const (
	DispatchSync DispatchMode = iota
	DispatchAsync
)

const (
	asyncQueueSize  = 2048
	asyncWorkerPool = 4
)

// EventBus is a thread-safe pub/sub fan-out for reward events. The
// realtime hub, webhook sink, and leaderboard tracker all attach
// through it. Sync mode runs handlers inline on Publish; async mode
// hands events to a small worker pool and drops on a full queue.
type EventBus struct {
	mode   DispatchMode
	mu     sync.RWMutex
	subs   map[core.EventType]map[int64]func(context.Context, core.Event)
	nextID int64

	queue   chan core.Event
	done    chan struct{}
	workers sync.WaitGroup
}

func NewEventBus(mode DispatchMode) *EventBus {
	eb := &EventBus{
		mode:  mode,
		subs:  make(map[core.EventType]map[int64]func(context.Context, core.Event)),
		queue: make(chan core.Event, asyncQueueSize),
		done:  make(chan struct{}),
	}
	if mode == DispatchAsync {
		for i := 0; i < asyncWorkerPool; i++ {
			eb.workers.Add(1)
			go eb.worker()
		}
	}
	return eb
}

func (e *EventBus) worker() {
	defer e.workers.Done()
	for {
		select {
		case ev := <-e.queue:
			e.fanOut(context.Background(), ev)
		case <-e.done:
			return
		}
	}
}

// Close stops async workers and waits for them to exit. Events still
// sitting in the queue are discarded.
func (e *EventBus) Close() {
	close(e.done)
	e.workers.Wait()
}

// Subscribe registers a handler for an event type and returns an
// unsubscribe func.
func (e *EventBus) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	if e.subs[typ] == nil {
		e.subs[typ] = make(map[int64]func(context.Context, core.Event))
	}
	e.subs[typ][id] = handler
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs[typ], id)
	}
}

// Publish delivers an event to all subscribers of its type. In async
// mode a full queue drops the event rather than blocking the caller.
func (e *EventBus) Publish(ctx context.Context, ev core.Event) {
	if e.mode == DispatchAsync {
		select {
		case e.queue <- ev:
		case <-e.done:
		default:
		}
		return
	}
	e.fanOut(ctx, ev)
}

func (e *EventBus) fanOut(ctx context.Context, ev core.Event) {
	e.mu.RLock()
	handlers := make([]func(context.Context, core.Event), 0, len(e.subs[ev.Type]))
	for _, h := range e.subs[ev.Type] {
		handlers = append(handlers, h)
	}
	e.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}
}
