package events

import "sync"

// Topic identifies a cart event stream.
type Topic string

const (
	TopicCartUpdated Topic = "cart-updated"
	TopicLineError   Topic = "line-error"
	TopicGiftAdded   Topic = "gift-added"
	TopicGiftRemoved Topic = "gift-removed"
)

// Event is the payload delivered to subscribers. Cart holds the snapshot that
// triggered the event when one is available; Data carries topic-specific extras
// (line key, error message, gift product id).
type Event struct {
	Topic  Topic
	Source string
	Cart   interface{}
	Data   map[string]string
}

// Bus is a synchronous publish/subscribe hub. Subscribe returns an unsubscribe
// func so components can tear down deterministically on disconnect; a listener
// removed that way is never called again, not even for publishes already queued
// by another goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic]map[int]func(Event)
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]func(Event))}
}

// Subscribe registers a handler for a topic and returns its unsubscribe func.
// Calling the returned func more than once is harmless.
func (b *Bus) Subscribe(topic Topic, fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.subs[topic][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers an event to all current subscribers of its topic. Delivery
// order across handlers is not guaranteed. Handlers run on the caller's goroutine.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.subs[e.Topic]))
	for _, fn := range b.subs[e.Topic] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn(e)
	}
}

// SubscriberCount reports how many handlers a topic has (for tests).
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
