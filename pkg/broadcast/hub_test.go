package broadcast

import (
	"errors"
	"testing"
	"time"
)

func TestPublishReachesTopicAndGlobalSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	mine := make(chan Event, 4)
	other := make(chan Event, 4)
	global := make(chan Event, 4)
	for id, sub := range map[string]struct {
		topic string
		ch    chan Event
	}{
		"mine":   {"session-1", mine},
		"other":  {"session-2", other},
		"global": {AllTopics, global},
	} {
		if err := hub.Subscribe(id, sub.topic, sub.ch); err != nil {
			t.Fatalf("Subscribe %s: %v", id, err)
		}
	}

	hub.Publish("session-1", "simulation_update", map[string]int{"north": 5})

	for name, ch := range map[string]chan Event{"mine": mine, "global": global} {
		select {
		case ev := <-ch:
			if ev.Name != "simulation_update" || ev.Topic != "session-1" {
				t.Errorf("%s got %+v", name, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: timeout waiting for event", name)
		}
	}
	if len(other) != 0 {
		t.Errorf("subscriber of another session received %d events", len(other))
	}
}

func TestPublishDoesNotBlock(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch := make(chan Event, 1)
	if err := hub.Subscribe("slow", AllTopics, ch); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		hub.Publish("s", "alert", 1)
		hub.Publish("s", "alert", 2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Publish blocked on a full subscriber")
	}

	stats := hub.Stats()
	if stats.TotalPublished != 2 {
		t.Errorf("TotalPublished = %d, want 2", stats.TotalPublished)
	}
	if s := stats.Subscribers["slow"]; s.Sent != 1 || s.Dropped != 1 {
		t.Errorf("slow stats = %+v, want 1 sent 1 dropped", s)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	hub.Publish("s", "alert", nil)
	if hub.Stats().TotalPublished != 1 {
		t.Error("publish with no subscribers should still count")
	}
}

func TestSubscribeErrors(t *testing.T) {
	hub := NewHub()

	ch := make(chan Event, 1)
	if err := hub.Subscribe("a", AllTopics, ch); err != nil {
		t.Fatal(err)
	}
	if err := hub.Subscribe("a", AllTopics, ch); !errors.Is(err, ErrSubscriberExists) {
		t.Errorf("duplicate id: got %v", err)
	}
	if err := hub.Subscribe("b", AllTopics, nil); !errors.Is(err, ErrNilChannel) {
		t.Errorf("nil channel: got %v", err)
	}
	if err := hub.Unsubscribe("missing"); !errors.Is(err, ErrSubscriberNotFound) {
		t.Errorf("unsubscribe missing: got %v", err)
	}

	hub.Close()
	if err := hub.Subscribe("c", AllTopics, ch); !errors.Is(err, ErrHubClosed) {
		t.Errorf("subscribe after close: got %v", err)
	}
	hub.Publish("s", "alert", nil)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch := make(chan Event, 2)
	hub.Subscribe("a", AllTopics, ch)
	if err := hub.Unsubscribe("a"); err != nil {
		t.Fatal(err)
	}
	hub.Publish("s", "alert", nil)
	if len(ch) != 0 {
		t.Error("unsubscribed channel received an event")
	}
}
