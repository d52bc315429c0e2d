// Package live re-emits full ordered snapshots to subscribers whenever the
// underlying data changes.
package live

import (
	"context"
	"sync"
)

// Feed is a subscribable snapshot stream. Subscribers receive the latest
// snapshot on subscription and after every Publish. A slow subscriber only
// ever sees the newest snapshot; intermediate ones are dropped.
type Feed[T any] struct {
	mu     sync.Mutex
	last   []T
	primed bool
	subs   map[uint64]chan []T
	nextID uint64
}

// NewFeed constructs an empty feed.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[uint64]chan []T)}
}

// Publish replaces the current snapshot and pushes it to every subscriber.
func (f *Feed[T]) Publish(snapshot []T) {
	snapshot = clone(snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.last = snapshot
	f.primed = true
	for _, ch := range f.subs {
		offer(ch, snapshot)
	}
}

// Snapshot returns a copy of the latest published snapshot.
func (f *Feed[T]) Snapshot() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.last)
}

// Subscribe returns a channel of snapshots that is closed once ctx is done.
func (f *Feed[T]) Subscribe(ctx context.Context) <-chan []T {
	ch := make(chan []T, 1)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	if f.primed {
		ch <- f.last
	}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()

	return ch
}

// Subscribers reports the number of active subscriptions.
func (f *Feed[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// offer must be called with the feed lock held; it is the only sender.
func offer[T any](ch chan []T, snapshot []T) {
	select {
	case <-ch:
	default:
	}
	ch <- snapshot
}

func clone[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
