// Package notify provides coalescing change notifications.
//
// A Broker never carries state. Publishers call Publish after mutating their
// own state, subscribers receive a signal and pull the current snapshot from
// the publisher. Signals are coalesced: a slow subscriber sees at most one
// pending notification no matter how many publishes happened.
package notify

import "sync"

// Broker fans out change signals to subscribers.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan struct{})}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish signals every subscriber without blocking.
func (b *Broker) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
