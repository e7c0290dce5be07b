// Package changefeed turns "the leads table changed" notifications into
// payload-free signals for any number of in-process subscribers.
package changefeed

import (
	"sync"
)

// Hub fans change signals out to subscribers. Each subscriber owns a one-slot
// channel, so a burst of changes collapses into a single pending signal and a
// slow subscriber never blocks the others.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]chan struct{}
	nextID uint64
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan struct{})}
}

// Subscribe returns a signal channel and an idempotent unsubscribe func.
// The channel is closed on unsubscribe.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch, _, unsubscribe := h.subscribe()
	return ch, unsubscribe
}

// SubscribeFunc calls fn on its own goroutine for every delivered signal until
// the returned unsubscribe is called. A signal still pending at unsubscribe
// is dropped, so fn never starts after unsubscribe returns.
func (h *Hub) SubscribeFunc(fn func()) func() {
	ch, done, unsubscribe := h.subscribe()
	go func() {
		for range ch {
			select {
			case <-done:
				return
			default:
				fn()
			}
		}
	}()
	return unsubscribe
}

func (h *Hub) subscribe() (chan struct{}, chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	done := make(chan struct{})

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, done, func() {
		once.Do(func() {
			close(done)
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Notify signals every subscriber without blocking.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
