package events

import (
	"sync"
	"testing"
)

func TestSubscribe_Publish(t *testing.T) {
	b := NewBus()
	var got []Event
	b.Subscribe(TopicCartUpdated, func(e Event) {
		got = append(got, e)
	})

	b.Publish(Event{Topic: TopicCartUpdated, Source: "test"})
	if len(got) != 1 {
		t.Fatalf("handler calls = %d, want 1", len(got))
	}
	if got[0].Source != "test" {
		t.Errorf("Source = %q, want test", got[0].Source)
	}
}

func TestPublish_OtherTopicNotDelivered(t *testing.T) {
	b := NewBus()
	called := false
	b.Subscribe(TopicGiftAdded, func(Event) { called = true })

	b.Publish(Event{Topic: TopicCartUpdated})
	if called {
		t.Error("gift-added handler called for cart-updated")
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsub := b.Subscribe(TopicLineError, func(Event) { calls++ })

	b.Publish(Event{Topic: TopicLineError})
	unsub()
	b.Publish(Event{Topic: TopicLineError})

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (unsubscribed before second publish)", calls)
	}
	if b.SubscriberCount(TopicLineError) != 0 {
		t.Error("subscriber should be removed")
	}
}

func TestUnsubscribe_Twice(t *testing.T) {
	b := NewBus()
	unsub := b.Subscribe(TopicGiftRemoved, func(Event) {})
	unsub()
	unsub() // must not panic
}

func TestPublish_Concurrent(t *testing.T) {
	b := NewBus()
	var mu sync.Mutex
	calls := 0
	b.Subscribe(TopicCartUpdated, func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish(Event{Topic: TopicCartUpdated})
		}()
	}
	wg.Wait()

	if calls != 20 {
		t.Errorf("calls = %d, want 20", calls)
	}
}
