package core

import "sync"

// DefaultSubscriberBuffer is the per-subscriber queue depth used when none is configured.
const DefaultSubscriberBuffer = 100

// Bus fans every published event out to all live subscriptions.
//
// Each subscription owns a bounded buffer. When a subscriber's buffer is full
// the event is dropped for that subscriber only (drop-newest) and the
// publisher moves on. Publish is serialized by the bus lock, so every
// subscriber observes events in the same global order. There is no replay:
// a subscription only sees events published after Subscribe returned.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
	onDrop func(Event)
}

// BusOption customizes a Bus.
type BusOption func(*Bus)

// WithDropHandler registers a callback invoked once per subscriber that missed an event.
// It runs outside the bus lock.
func WithDropHandler(fn func(Event)) BusOption {
	return func(b *Bus) {
		b.onDrop = fn
	}
}

// NewBus creates a bus whose subscriptions buffer up to buffer events.
func NewBus(buffer int, opts ...BusOption) *Bus {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	b := &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is the receive side of a bus subscription.
type Subscription struct {
	bus *Bus
	ch  chan Event
}

// C returns the event channel. It is closed when the subscription is released.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.bus.Unsubscribe(s)
}

// Subscribe returns a fresh subscription that observes events published from now on.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{bus: b, ch: make(chan Event, b.buffer)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

// Unsubscribe removes sub and closes its channel. Unknown or already
// released subscriptions are ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish delivers ev to every live subscription without blocking and
// returns how many subscriptions accepted it.
func (b *Bus) Publish(ev Event) int {
	delivered, dropped := 0, 0

	b.mu.Lock()
	for sub := range b.subs {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			// Drop for this lagging subscriber only.
			dropped++
		}
	}
	b.mu.Unlock()

	if b.onDrop != nil {
		for range dropped {
			b.onDrop(ev)
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
