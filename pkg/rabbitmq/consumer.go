package rabbitmq

import (
	"clearpath-signals/config"
	"context"
	"fmt"
	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"sync"
	"time"
)

type Consumer[T any] interface {
	Consume(ctx context.Context, dependencies T) error
}

type Handler[T any] func(ctx context.Context, msg amqp.Delivery, dependencies T) error

// Topology names the exchange, queue and dead-letter pair a consumer declares.
type Topology struct {
	Exchange      string
	Kind          string
	Queue         string
	RoutingKeys   []string
	DLX           string
	DLQ           string
	DLQRoutingKey string
}

// TopologyFromConfig derives the dead-letter names from the configured queue.
func TopologyFromConfig(cfg *config.RabbitMQ, routingKeys ...string) Topology {
	return Topology{
		Exchange:      cfg.ExchangeName,
		Kind:          cfg.Kind,
		Queue:         cfg.QueueName,
		RoutingKeys:   routingKeys,
		DLX:           cfg.ExchangeName + "_dlx",
		DLQ:           cfg.QueueName + "_dlq",
		DLQRoutingKey: "dlq." + cfg.QueueName,
	}
}

type consumer[T any] struct {
	conn       *amqp.Connection
	topology   Topology
	handler    Handler[T]
	numWorkers int
	maxTries   uint
	maxBackoff time.Duration
	retryable  func(error) bool
}

type Option func(*options)

type options struct {
	maxTries   uint
	maxBackoff time.Duration
	retryable  func(error) bool
}

// WithRetryable decides which handler errors are worth another attempt. Other
// errors send the message straight to the dead-letter queue.
func WithRetryable(fn func(error) bool) Option {
	return func(o *options) {
		o.retryable = fn
	}
}

func WithMaxTries(n uint) Option {
	return func(o *options) {
		o.maxTries = n
	}
}

func WithMaxBackoff(d time.Duration) Option {
	return func(o *options) {
		o.maxBackoff = d
	}
}

func (c consumer[T]) Consume(ctx context.Context, dependencies T) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := c.declare(ctx, ch); err != nil {
		return err
	}

	err = ch.Qos(c.numWorkers, 0, false)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", c.topology.Queue).Msg("failed to set QoS")
		return err
	}

	deliveries, err := ch.Consume(c.topology.Queue, "", false, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", c.topology.Queue).Msg("failed to consume queue")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("queue", c.topology.Queue).
		Str("exchange", c.topology.Exchange).
		Strs("routing_keys", c.topology.RoutingKeys).
		Int("workers", c.numWorkers).
		Msg("consumer started")

	jobs := make(chan amqp.Delivery, c.numWorkers)
	var wg sync.WaitGroup
	for i := 1; i <= c.numWorkers; i++ {
		wg.Add(1)
		go func(workerId int) {
			defer wg.Done()
			for msg := range jobs {
				c.process(ctx, workerId, msg, dependencies)
			}
		}(i)
	}

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}

			jobs <- delivery
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
}

func (c consumer[T]) declare(ctx context.Context, ch *amqp.Channel) error {
	t := c.topology
	logger := zerolog.Ctx(ctx)

	if err := ch.ExchangeDeclare(t.Exchange, t.Kind, true, false, false, false, nil); err != nil {
		logger.Error().Str("exchange", t.Exchange).Msg("failed to declare exchange")
		return err
	}
	if err := ch.ExchangeDeclare(t.DLX, t.Kind, true, false, false, false, nil); err != nil {
		logger.Error().Str("exchange", t.DLX).Msg("failed to declare dlx")
		return err
	}

	dlq, err := ch.QueueDeclare(t.DLQ, true, false, false, false, nil)
	if err != nil {
		logger.Error().Str("queue", t.DLQ).Msg("failed to declare dlq")
		return err
	}
	if err := ch.QueueBind(dlq.Name, t.DLQRoutingKey, t.DLX, false, nil); err != nil {
		logger.Error().Msg("failed to bind dlq")
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    t.DLX,
		"x-dead-letter-routing-key": t.DLQRoutingKey,
	}
	q, err := ch.QueueDeclare(t.Queue, true, false, false, false, args)
	if err != nil {
		logger.Error().Str("queue", t.Queue).Msg("failed to declare queue")
		return err
	}
	for _, key := range t.RoutingKeys {
		if err := ch.QueueBind(q.Name, key, t.Exchange, false, nil); err != nil {
			logger.Error().Str("queue", t.Queue).Str("routing_key", key).Msg("failed to bind queue")
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// process runs the handler with retries, then acks or dead-letters the delivery.
func (c consumer[T]) process(ctx context.Context, workerId int, msg amqp.Delivery, dependencies T) {
	operation := func() (struct{}, error) {
		err := c.handler(ctx, msg, dependencies)
		if err != nil && c.retryable != nil && !c.retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = c.maxBackoff
	if bo.InitialInterval > bo.MaxInterval {
		bo.InitialInterval = bo.MaxInterval
	}

	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Int("worker_id", workerId).
			Str("routing_key", msg.RoutingKey).
			Msg("failed to handle message, sending to DLQ")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			zerolog.Ctx(ctx).Error().Err(nackErr).Msg("failed to nack message to send to DLQ")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		zerolog.Ctx(ctx).Error().Err(ackErr).Msg("failed to acknowledge message")
	}
}

func NewConsumer[T any](
	conn *amqp.Connection,
	topology Topology,
	numWorkers int,
	handler Handler[T],
	opts ...Option,
) Consumer[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	o := options{maxTries: 5, maxBackoff: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	return &consumer[T]{
		conn:       conn,
		topology:   topology,
		handler:    handler,
		numWorkers: numWorkers,
		maxTries:   o.maxTries,
		maxBackoff: o.maxBackoff,
		retryable:  o.retryable,
	}
}
