package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()

	var first, second []Event
	b.Subscribe(TopicCartChanged, func(e Event) { first = append(first, e) })
	b.Subscribe(TopicCartChanged, func(e Event) { second = append(second, e) })

	b.Publish(Event{Topic: TopicCartChanged, UserID: "user-1"})

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, "user-1", first[0].UserID)
}

func TestTopicsAreIndependent(t *testing.T) {
	b := New()

	var cart, wishlist int
	b.Subscribe(TopicCartChanged, func(Event) { cart++ })
	b.Subscribe(TopicWishlistChanged, func(Event) { wishlist++ })

	b.Publish(Event{Topic: TopicCartChanged})

	assert.Equal(t, 1, cart)
	assert.Equal(t, 0, wishlist)
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	var calls int
	unsubscribe := b.Subscribe(TopicWishlistChanged, func(Event) { calls++ })

	b.Publish(Event{Topic: TopicWishlistChanged})
	unsubscribe()
	b.Publish(Event{Topic: TopicWishlistChanged})

	assert.Equal(t, 1, calls)
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	b := New()

	var calls int
	var unsubscribe func()
	unsubscribe = b.Subscribe(TopicCartChanged, func(Event) {
		calls++
		unsubscribe()
	})

	b.Publish(Event{Topic: TopicCartChanged})
	b.Publish(Event{Topic: TopicCartChanged})

	assert.Equal(t, 1, calls)
}

func TestPublishWithNoSubscribers(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() {
		b.Publish(Event{Topic: TopicCartChanged})
	})
}
