// Package broadcast fans events out to live subscribers.
//
// Subscribers register for one topic (a session id) or for every topic with
// AllTopics. Publish never blocks: when a subscriber's buffer is full the
// event is dropped for that subscriber and counted.
package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"
)

// AllTopics subscribes to events of every topic.
const AllTopics = ""

var (
	ErrHubClosed          = errors.New("broadcast: hub is closed")
	ErrSubscriberExists   = errors.New("broadcast: subscriber already exists")
	ErrSubscriberNotFound = errors.New("broadcast: subscriber not found")
	ErrNilChannel         = errors.New("broadcast: nil channel provided")
)

type Event struct {
	Name  string `json:"event"`
	Topic string `json:"-"`
	Data  any    `json:"data"`
}

type SubscriberStats struct {
	Topic   string `json:"topic"`
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
}

type Stats struct {
	TotalPublished uint64                     `json:"totalPublished"`
	Subscribers    map[string]SubscriberStats `json:"subscribers"`
}

// Publisher is the side of the hub used by the ingest pipelines.
type Publisher interface {
	Publish(topic, name string, data any)
}

type subscriber struct {
	topic   string
	ch      chan<- Event
	sent    atomic.Uint64
	dropped atomic.Uint64
}

type Hub struct {
	mu             sync.RWMutex
	subscribers    map[string]*subscriber
	totalPublished atomic.Uint64
	closed         bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*subscriber),
	}
}

// Subscribe registers ch under id for events of topic.
func (h *Hub) Subscribe(id, topic string, ch chan<- Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if _, exists := h.subscribers[id]; exists {
		return ErrSubscriberExists
	}
	if ch == nil {
		return ErrNilChannel
	}

	h.subscribers[id] = &subscriber{topic: topic, ch: ch}
	return nil
}

func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subscribers[id]; !exists {
		return ErrSubscriberNotFound
	}
	delete(h.subscribers, id)
	return nil
}

// Publish delivers the event to subscribers of topic and of AllTopics.
func (h *Hub) Publish(topic, name string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	h.totalPublished.Add(1)
	ev := Event{Name: name, Topic: topic, Data: data}
	for _, sub := range h.subscribers {
		if sub.topic != AllTopics && sub.topic != topic {
			continue
		}
		select {
		case sub.ch <- ev:
			sub.sent.Add(1)
		default:
			sub.dropped.Add(1)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{
		TotalPublished: h.totalPublished.Load(),
		Subscribers:    make(map[string]SubscriberStats, len(h.subscribers)),
	}
	for id, sub := range h.subscribers {
		stats.Subscribers[id] = SubscriberStats{
			Topic:   sub.topic,
			Sent:    sub.sent.Load(),
			Dropped: sub.dropped.Load(),
		}
	}
	return stats
}

// Close stops delivery and drops every subscriber. Channels are owned by the
// subscribers and are not closed here.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.subscribers = nil
}
