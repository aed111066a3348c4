package ws

import (
	"testing"
	"time"
)

func drain(t *testing.T, sub *Subscription, n int) []Event {
	t.Helper()

	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		select {
		case e := <-sub.Events():
			events = append(events, e)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
	return events
}

func TestBroker_PublishOrder(t *testing.T) {
	broker := NewBroker()
	sub := broker.NewSubscription()
	broker.Join(sub, "blocks")

	for i := 1; i <= 5; i++ {
		broker.Publish("blocks", "new_block", i)
	}

	events := drain(t, sub, 5)
	for i, e := range events {
		if e.Channel != "blocks" || e.Type != "new_block" {
			t.Errorf("event %d: unexpected envelope %+v", i, e)
		}
		if e.Data.(int) != i+1 {
			t.Errorf("event %d: expected data %d, got %v", i, i+1, e.Data)
		}
		if e.Timestamp == "" {
			t.Errorf("event %d: expected timestamp", i)
		}
	}
}

func TestBroker_ChannelIsolation(t *testing.T) {
	broker := NewBroker()

	blockSub := broker.NewSubscription()
	broker.Join(blockSub, "blocks")

	otherSub := broker.NewSubscription()
	broker.Join(otherSub, "other")

	broker.Publish("blocks", "new_block", 1)

	drain(t, blockSub, 1)

	select {
	case e := <-otherSub.Events():
		t.Errorf("unexpected event on other channel: %+v", e)
	default:
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	broker := NewBroker()

	first := broker.NewSubscription()
	second := broker.NewSubscription()
	broker.Join(first, "blocks")
	broker.Join(second, "blocks")

	broker.Publish("blocks", "new_block", 1)

	drain(t, first, 1)
	drain(t, second, 1)
}

func TestBroker_Leave(t *testing.T) {
	broker := NewBroker()
	sub := broker.NewSubscription()
	broker.Join(sub, "blocks")
	broker.Leave(sub, "blocks")

	broker.Publish("blocks", "new_block", 1)

	select {
	case e := <-sub.Events():
		t.Errorf("unexpected event after leave: %+v", e)
	default:
	}
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker()
	sub := broker.NewSubscription()
	broker.Join(sub, "blocks")

	broker.Close(sub)

	if _, open := <-sub.Events(); open {
		t.Error("expected event stream to be closed")
	}

	// Publishing after close must not panic
	broker.Publish("blocks", "new_block", 1)
}

func TestBroker_SlowSubscriberDropsEvents(t *testing.T) {
	broker := NewBroker()
	sub := broker.NewSubscription()
	broker.Join(sub, "blocks")

	// Overfill the buffer; the publisher must not block
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriptionBuffer+10; i++ {
			broker.Publish("blocks", "new_block", i)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	events := drain(t, sub, subscriptionBuffer)
	if events[0].Data.(int) != 0 {
		t.Errorf("expected oldest buffered event first, got %v", events[0].Data)
	}
}
