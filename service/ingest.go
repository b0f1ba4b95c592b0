package service

import (
	"clearpath-signals/constant"
	"clearpath-signals/dto"
	"clearpath-signals/entities"
	"clearpath-signals/pkg/broadcast"
	"clearpath-signals/pkg/throttle"
	"clearpath-signals/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"time"
)

// IngestService applies the updates and alerts pushed by the CV service.
type IngestService interface {
	Update(ctx context.Context, message dto.UpdateMessage) error
	Alert(ctx context.Context, message dto.AlertMessage) (*entities.Alert, error)
	Complete(ctx context.Context, sessionID string) error
	MarkFailed(ctx context.Context, sessionID string) error
	// Drain waits for pending traffic log snapshots.
	Drain()
}

type ingestService struct {
	repo      repository.Repository
	limiter   *throttle.Limiter
	publisher broadcast.Publisher
	snapshots *snapshotWriter
	now       func() time.Time
}

type IngestOption func(*ingestService)

// WithClock replaces the wall clock used for throttling and timestamps.
func WithClock(now func() time.Time) IngestOption {
	return func(s *ingestService) {
		s.now = now
	}
}

// WithInlineSnapshots writes traffic log snapshots before Update returns.
func WithInlineSnapshots() IngestOption {
	return func(s *ingestService) {
		s.snapshots.inline = true
	}
}

func NewIngestService(repo repository.Repository, limiter *throttle.Limiter, publisher broadcast.Publisher, opts ...IngestOption) IngestService {
	s := &ingestService{
		repo:      repo,
		limiter:   limiter,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		snapshots: &snapshotWriter{
			repo:    repo,
			onError: logSnapshotError,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func logSnapshotError(ctx context.Context, log *entities.TrafficLog, err error) {
	zerolog.Ctx(ctx).Error().Err(err).
		Str("session_id", log.SessionID).
		Str("user_id", log.UserID.String()).
		Msg("failed to persist traffic log snapshot")
}

func (s *ingestService) Update(ctx context.Context, message dto.UpdateMessage) error {
	if message.SessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrValidation)
	}

	session, err := s.findSession(ctx, message.SessionID)
	if err != nil {
		return err
	}
	if session.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrSessionClosed, session.SessionID, session.Status)
	}

	var signal *entities.SignalState
	if message.Counts != nil {
		session.CurrentState.Counts = *message.Counts
	}
	if message.SignalState != nil {
		session.CurrentState.SignalState = message.SignalState.WithDefaults()
		signal = &session.CurrentState.SignalState
	}

	err = s.repo.UpdateSessionState(ctx, session.SessionID, message.Counts, signal)
	if errors.Is(err, repository.ErrClosed) {
		return fmt.Errorf("%w: %s finished during update", ErrSessionClosed, session.SessionID)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", session.SessionID).Msg("failed to save simulation state")
		return fmt.Errorf("save session %s: %w", session.SessionID, err)
	}

	now := s.now()
	if session.UserID != nil && s.limiter.Allow(session.SessionID, now) {
		s.snapshots.Write(context.WithoutCancel(ctx), newSnapshot(*session.UserID, message, now))
	}

	frames := message.Frames
	if len(frames) == 0 || string(frames) == "null" {
		frames = json.RawMessage("{}")
	}
	s.publisher.Publish(session.SessionID, constant.EventSimulationUpdate, dto.SimulationUpdateEvent{
		SessionID:        session.SessionID,
		Counts:           session.CurrentState.Counts,
		SignalState:      session.CurrentState.SignalState,
		Frames:           frames,
		VehicleBreakdown: message.VehicleBreakdown,
	})

	return nil
}

// newSnapshot builds a log row from the update itself; absent parts are zero
// and lights default to red.
func newSnapshot(userID uuid.UUID, message dto.UpdateMessage, now time.Time) *entities.TrafficLog {
	log := &entities.TrafficLog{
		UserID:      userID,
		SessionID:   message.SessionID,
		Timestamp:   now,
		SignalState: entities.SignalState{}.WithDefaults(),
		Events:      []entities.TrafficLogEvent{},
	}
	if message.Counts != nil {
		log.VehicleCounts = *message.Counts
	}
	log.TotalVehicles = log.VehicleCounts.Total()
	if message.VehicleBreakdown != nil {
		log.VehicleBreakdown = *message.VehicleBreakdown
	}
	if message.SignalState != nil {
		log.SignalState = message.SignalState.WithDefaults()
	}
	return log
}

func (s *ingestService) Alert(ctx context.Context, message dto.AlertMessage) (*entities.Alert, error) {
	if message.SessionID == "" || message.Message == "" || !message.AlertType.Valid() {
		return nil, fmt.Errorf("%w: session_id, message and a known alert_type are required", ErrValidation)
	}

	alert := &entities.Alert{
		SessionID: message.SessionID,
		AlertType: message.AlertType,
		Message:   message.Message,
		Direction: message.Direction,
		Timestamp: s.now(),
	}
	if message.Metadata != nil {
		alert.Metadata = datatypes.JSONMap(message.Metadata)
	}

	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", message.SessionID).Msg("failed to save alert")
		return nil, fmt.Errorf("save alert: %w", err)
	}

	s.publisher.Publish(alert.SessionID, constant.EventAlert, dto.AlertEvent{
		SessionID: alert.SessionID,
		AlertType: alert.AlertType,
		Message:   alert.Message,
		Direction: alert.Direction,
		Timestamp: alert.Timestamp,
	})

	return alert, nil
}

func (s *ingestService) Complete(ctx context.Context, sessionID string) error {
	now := s.now()
	if err := s.setStatus(ctx, sessionID, constant.SessionStatusCompleted, &now); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("session_id", sessionID).Msg("simulation completed")
	return nil
}

func (s *ingestService) MarkFailed(ctx context.Context, sessionID string) error {
	if err := s.setStatus(ctx, sessionID, constant.SessionStatusFailed, nil); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Warn().Str("session_id", sessionID).Msg("simulation failed")
	return nil
}

// setStatus moves the session to a terminal status and releases its throttle entry.
func (s *ingestService) setStatus(ctx context.Context, sessionID string, status constant.SessionStatus, completedAt *time.Time) error {
	err := s.repo.UpdateSessionStatus(ctx, sessionID, status, completedAt)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("update session %s status: %w", sessionID, err)
	}
	s.limiter.Forget(sessionID)
	return nil
}

func (s *ingestService) findSession(ctx context.Context, sessionID string) (*entities.Session, error) {
	session, err := s.repo.FindSessionBySessionID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session %s: %w", sessionID, err)
	}
	return session, nil
}

func (s *ingestService) Drain() {
	s.snapshots.Wait()
}
