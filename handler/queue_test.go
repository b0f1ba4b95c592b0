package handler

import (
	"clearpath-signals/constant"
	"clearpath-signals/service"
	"context"
	"errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"testing"
)

func TestQueueHandler(t *testing.T) {
	s := newTestServer(t)
	s.seedSession(t, "session-1", nil)
	deps := ServiceDependencies{IngestService: s.ingest}
	ctx := context.Background()

	tests := []struct {
		name      string
		key       string
		body      string
		wantErr   bool
		retryable bool
	}{
		{name: "update", key: constant.RoutingKeyUpdate, body: `{"session_id":"session-1","counts":{"north":7}}`},
		{name: "alert", key: constant.RoutingKeyAlert, body: `{"session_id":"session-1","alert_type":"pedestrian","message":"crossing"}`},
		{name: "malformed json", key: constant.RoutingKeyUpdate, body: `{"session_id":`, wantErr: true},
		{name: "missing session id", key: constant.RoutingKeyUpdate, body: `{"counts":{}}`, wantErr: true},
		{name: "unknown session", key: constant.RoutingKeyUpdate, body: `{"session_id":"session-9"}`, wantErr: true},
		{name: "bad alert type", key: constant.RoutingKeyAlert, body: `{"session_id":"session-1","alert_type":"x","message":"m"}`, wantErr: true},
		{name: "unknown routing key", key: "simulation.frames", body: `{}`, wantErr: true},
		{name: "complete", key: constant.RoutingKeyComplete, body: `{"session_id":"session-1"}`},
		{name: "update after complete", key: constant.RoutingKeyUpdate, body: `{"session_id":"session-1"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := QueueHandler(ctx, amqp.Delivery{RoutingKey: tt.key, Body: []byte(tt.body)}, deps)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && Retryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", Retryable(err), tt.retryable)
			}
		})
	}

	session, _ := s.repo.FindSessionBySessionID(ctx, "session-1")
	if session.CurrentState.Counts.North != 7 || session.Status != constant.SessionStatusCompleted {
		t.Errorf("session = %+v", session)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(errors.Join(service.ErrNonRetryable, errors.New("x"))) {
		t.Error("non-retryable reported retryable")
	}
	if !Retryable(errors.New("connection reset")) {
		t.Error("plain error reported non-retryable")
	}
}
