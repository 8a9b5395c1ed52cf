// Package events delivers render notifications to interested parties, such
// as the pager's status bar or a background pre-render worker.
//
// Subscribers receive events on a buffered channel. Publish never blocks: a
// subscriber whose buffer is full misses the event and the drop is counted.
package events

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBusClosed is returned when subscribing to a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// DefaultBuffer is the channel capacity used for subscriptions.
const DefaultBuffer = 16

// RenderCompleted is published after every render, cached or not.
type RenderCompleted struct {
	FilePath     string
	Theme        string
	Cached       bool
	RenderTimeMs float64
	Headings     int
	Issues       int
	Errors       int
	At           time.Time
}

// Bus fans events out to subscribers. The zero value is not usable; create
// one with NewBus.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

// Subscription is a handle on one subscriber.
type Subscription struct {
	id  uint64
	ch  chan RenderCompleted
	bus *Bus

	once sync.Once
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a subscriber with a buffer of the given size. A size
// below one uses DefaultBuffer.
func (b *Bus) Subscribe(buffer int) (*Subscription, error) {
	if buffer < 1 {
		buffer = DefaultBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	b.nextID++
	sub := &Subscription{
		id:  b.nextID,
		ch:  make(chan RenderCompleted, buffer),
		bus: b,
	}
	b.subs[sub.id] = sub
	return sub, nil
}

// Publish delivers ev to every subscriber without blocking. It returns the
// number of subscribers that received it. Publishing on a closed bus is a
// no-op.
func (b *Bus) Publish(ev RenderCompleted) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}

	b.published.Add(1)
	delivered := 0
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Published returns how many events were published.
func (b *Bus) Published() uint64 { return b.published.Load() }

// Dropped returns how many deliveries were skipped because a subscriber was
// not keeping up.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }

// Close unsubscribes everyone and closes their channels. Closing twice is
// safe.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
}

// C returns the channel events arrive on. It is closed on Unsubscribe or
// when the bus closes.
func (s *Subscription) C() <-chan RenderCompleted {
	return s.ch
}

// Unsubscribe removes the subscription from its bus. It is safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	delete(s.bus.subs, s.id)
	s.once.Do(func() { close(s.ch) })
}
