package relay

import "sync"

// Bus broadcasts messages to whatever extension contexts happen to be
// listening. Delivery is best effort on purpose: a broadcast with no
// listeners, or to a listener that has fallen behind, is dropped and the
// error swallowed. Observers that miss a broadcast still converge via
// the storage-change path.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Message
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Message)}
}

// Subscribe registers a listener. The returned cancel function removes
// it and closes the channel.
func (b *Bus) Subscribe() (<-chan Message, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Message, 8)
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish sends m to every subscriber without blocking.
func (b *Bus) Publish(m Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- m:
		default:
		}
	}
}

// Listeners returns the current subscriber count.
func (b *Bus) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
