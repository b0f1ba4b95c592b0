package handler

import (
	"clearpath-signals/constant"
	"clearpath-signals/dto"
	"clearpath-signals/service"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin/binding"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type ServiceDependencies struct {
	IngestService service.IngestService
}

// QueueRoutingKeys are the routing keys QueueHandler understands.
var QueueRoutingKeys = []string{
	constant.RoutingKeyUpdate,
	constant.RoutingKeyAlert,
	constant.RoutingKeyComplete,
}

// QueueHandler applies one CV service message taken from the ingest queue.
// Malformed messages and messages for unknown or finished sessions are
// joined with service.ErrNonRetryable.
func QueueHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	logger := zerolog.Ctx(ctx).With().Str("routing_key", msg.RoutingKey).Logger()
	ctx = logger.WithContext(ctx)

	var err error
	switch msg.RoutingKey {
	case constant.RoutingKeyUpdate:
		var update dto.UpdateMessage
		if err = decode(msg.Body, &update); err != nil {
			break
		}
		err = deps.IngestService.Update(ctx, update)
	case constant.RoutingKeyAlert:
		var alert dto.AlertMessage
		if err = decode(msg.Body, &alert); err != nil {
			break
		}
		_, err = deps.IngestService.Alert(ctx, alert)
	case constant.RoutingKeyComplete:
		var complete dto.CompleteMessage
		if err = decode(msg.Body, &complete); err != nil {
			break
		}
		err = deps.IngestService.Complete(ctx, complete.SessionID)
	default:
		err = errors.Join(service.ErrNonRetryable, fmt.Errorf("unknown routing key %q", msg.RoutingKey))
	}

	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionClosed) || errors.Is(err, service.ErrValidation) {
		err = errors.Join(service.ErrNonRetryable, err)
	}
	logger.Error().Err(err).Msg("failed to apply queue message")
	return err
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Join(service.ErrNonRetryable, err)
	}
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return errors.Join(service.ErrNonRetryable, err)
	}
	return nil
}

// Retryable reports whether a queue handler error is worth another attempt.
func Retryable(err error) bool {
	return !errors.Is(err, service.ErrNonRetryable)
}
