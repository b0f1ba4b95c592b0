package rabbitmq

import (
	"clearpath-signals/config"
	"context"
	"errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"sync"
	"testing"
	"time"
)

type recordingAck struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (a *recordingAck) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *recordingAck) Reject(uint64, bool) error {
	return nil
}

var errBadPayload = errors.New("bad payload")

func newTestConsumer(handler Handler[*int]) consumer[*int] {
	c := NewConsumer[*int](nil, Topology{}, 1, handler,
		WithMaxTries(3),
		WithMaxBackoff(time.Millisecond),
		WithRetryable(func(err error) bool { return !errors.Is(err, errBadPayload) }),
	)
	return *c.(*consumer[*int])
}

func TestProcessRetriesThenAcks(t *testing.T) {
	ack := &recordingAck{}
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg amqp.Delivery, n *int) error {
		*n++
		if *n < 2 {
			return errors.New("database busy")
		}
		return nil
	})

	c.process(context.Background(), 1, amqp.Delivery{Acknowledger: ack}, &calls)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if ack.acks != 1 || ack.nacks != 0 {
		t.Errorf("acks = %d nacks = %d", ack.acks, ack.nacks)
	}
}

func TestProcessDeadLettersAfterMaxTries(t *testing.T) {
	ack := &recordingAck{}
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg amqp.Delivery, n *int) error {
		*n++
		return errors.New("database down")
	})

	c.process(context.Background(), 1, amqp.Delivery{Acknowledger: ack}, &calls)

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if ack.nacks != 1 || ack.requeue {
		t.Errorf("nacks = %d requeue = %v", ack.nacks, ack.requeue)
	}
}

func TestProcessSkipsRetryForNonRetryable(t *testing.T) {
	ack := &recordingAck{}
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg amqp.Delivery, n *int) error {
		*n++
		return errors.Join(errBadPayload, errors.New("unexpected end of JSON input"))
	})

	c.process(context.Background(), 1, amqp.Delivery{Acknowledger: ack}, &calls)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if ack.nacks != 1 || ack.acks != 0 {
		t.Errorf("acks = %d nacks = %d", ack.acks, ack.nacks)
	}
}

func TestTopologyFromConfig(t *testing.T) {
	topo := TopologyFromConfig(&config.RabbitMQ{
		ExchangeName: "simulation_exchange",
		QueueName:    "simulation_ingest_queue",
		Kind:         "topic",
	}, "simulation.update", "simulation.alert")

	if topo.DLX != "simulation_exchange_dlx" || topo.DLQ != "simulation_ingest_queue_dlq" {
		t.Errorf("topology = %+v", topo)
	}
	if len(topo.RoutingKeys) != 2 || topo.Kind != "topic" {
		t.Errorf("topology = %+v", topo)
	}
}
