// Package bus fans desktop changes out to any number of subscribers.
package bus

import (
	"context"
	"sync"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 8

// Hub broadcasts events of type T. A subscriber that falls behind loses its
// oldest queued events rather than blocking the publisher.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[*chan T]struct{}
	buffer int
}

// NewHub creates a hub with DefaultBuffer sized queues.
func NewHub[T any]() *Hub[T] {
	return NewHubSize[T](DefaultBuffer)
}

// NewHubSize creates a hub with the given per-subscriber queue length.
func NewHubSize[T any](buffer int) *Hub[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub[T]{
		subs:   make(map[*chan T]struct{}),
		buffer: buffer,
	}
}

// Broadcast delivers event to every subscriber.
func (h *Hub[T]) Broadcast(ctx context.Context, event T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		deliver(*sub, event)
	}

	return nil
}

func deliver[T any](c chan T, event T) {
	for {
		select {
		case c <- event:
			return
		default:
		}
		// Full: drop the oldest and retry.
		select {
		case <-c:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned func unsubscribes and
// closes the channel; it is also called when ctx is done.
func (h *Hub[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	h.mu.Lock()
	c := make(chan T, h.buffer)

	key := &c
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	stop := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, key)
			close(c)
			h.mu.Unlock()
			close(stop)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-stop:
		}
	}()

	return c, unsubscribe
}

// Len returns the number of subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
