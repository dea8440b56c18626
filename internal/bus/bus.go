// Package bus is a small in-process pub/sub channel for "something changed"
// notifications. Badge and count views subscribe to a topic instead of having
// change signals threaded through every component in between. Events carry no
// payload beyond the topic and an optional key: the server stays the source
// of truth, subscribers are expected to re-fetch.
package bus

import "sync"

type Topic string

const (
	TopicCartChanged     Topic = "cart-changed"
	TopicWishlistChanged Topic = "wishlist-changed"
)

type Event struct {
	Topic  Topic
	UserID string
}

type Handler func(Event)

type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]Handler
}

func New() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns an unsubscribe func.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish invokes every handler subscribed to the topic. Handlers run on the
// publisher's goroutine against a copy of the subscriber set, so a handler
// may unsubscribe itself without deadlocking.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[evt.Topic]))
	for _, h := range b.subs[evt.Topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}
