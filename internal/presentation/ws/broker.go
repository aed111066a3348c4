package ws

import (
	"sync"
	"time"
)

// subscriptionBuffer is the per-client event buffer; a client that falls this
// far behind starts losing events (best-effort live feed, no redelivery).
const subscriptionBuffer = 64

// Event is a single fanout message
type Event struct {
	Type      string      `json:"type"`
	Channel   string      `json:"channel"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// Subscription is one client's view of the broker. Events for all joined
// channels arrive on a single buffered channel, in publish order.
type Subscription struct {
	events chan Event
}

// Events returns the subscription's event stream
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Broker fans events out to subscribers joined to named channels. Delivery
// is FIFO per channel; nothing is retained for late joiners.
type Broker struct {
	mu       sync.RWMutex
	channels map[string]map[*Subscription]struct{}
}

// NewBroker creates an empty broker
func NewBroker() *Broker {
	return &Broker{
		channels: make(map[string]map[*Subscription]struct{}),
	}
}

// NewSubscription creates a subscription not yet joined to any channel
func (b *Broker) NewSubscription() *Subscription {
	return &Subscription{
		events: make(chan Event, subscriptionBuffer),
	}
}

// Join subscribes sub to a named channel
func (b *Broker) Join(sub *Subscription, channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.channels[channel]
	if !ok {
		subs = make(map[*Subscription]struct{})
		b.channels[channel] = subs
	}
	subs[sub] = struct{}{}
}

// Leave unsubscribes sub from a named channel
func (b *Broker) Leave(sub *Subscription, channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.channels[channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.channels, channel)
		}
	}
}

// Close removes sub from every channel and closes its event stream
func (b *Broker) Close(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for channel, subs := range b.channels {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.channels, channel)
		}
	}
	close(sub.events)
}

// Publish delivers an event to every subscriber of the channel. A subscriber
// whose buffer is full is skipped rather than blocking the publisher.
func (b *Broker) Publish(channel, eventType string, data interface{}) {
	event := Event{
		Type:      eventType,
		Channel:   channel,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.channels[channel] {
		select {
		case sub.events <- event:
		default:
		}
	}
}
