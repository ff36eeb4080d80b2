// Package eventbus provides a lightweight in-process pub/sub bus used to
// fan planning events (plan built, route acknowledged, cohort triaged) out
// to live consumers such as the HTTP event stream or background jobs.
//
// Publish never blocks: subscribers that fall behind drop events rather
// than stalling the planner.
package eventbus

import "sync"

// Event is any value published on the bus. Consumers type-switch on the
// concrete event types from core/events.
type Event any

const subscriberBuffer = 8

// Bus fans published events out to all current subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

// New returns an empty bus ready for use.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a new consumer and returns its receive channel.
// The channel is buffered; once the buffer is full further events are
// dropped for that subscriber until it catches up.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes the subscriber and closes its channel. It is a
// no-op if the channel is not subscribed.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Publish delivers ev to every subscriber that has buffer space left.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes all subscriber channels. Subsequent publishes are dropped
// and subsequent subscriptions receive an already-closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
