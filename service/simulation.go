package service

import (
	"clearpath-signals/entities"
	"clearpath-signals/repository"
	"context"
	"errors"
	"fmt"
	"time"
)

const sessionAlertLimit = 50

// SimulationService answers dashboard reads about sessions and their alerts.
type SimulationService interface {
	Latest(ctx context.Context) (*entities.Session, error)
	Get(ctx context.Context, sessionID string) (*entities.Session, error)
	Alerts(ctx context.Context, sessionID string) ([]*entities.Alert, error)
	PurgeAlerts(ctx context.Context, days int) (int64, error)
}

type simulationService struct {
	repo repository.Repository
	now  func() time.Time
}

func NewSimulationService(repo repository.Repository) SimulationService {
	return &simulationService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Latest returns the most recently created session, or nil when there is none.
func (s *simulationService) Latest(ctx context.Context) (*entities.Session, error) {
	session, err := s.repo.FindLatestSession(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return session, err
}

func (s *simulationService) Get(ctx context.Context, sessionID string) (*entities.Session, error) {
	session, err := s.repo.FindSessionBySessionID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *simulationService) Alerts(ctx context.Context, sessionID string) ([]*entities.Alert, error) {
	return s.repo.ListAlertsBySession(ctx, sessionID, sessionAlertLimit)
}

func (s *simulationService) PurgeAlerts(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("%w: days must not be negative", ErrValidation)
	}
	return s.repo.PurgeAlertsBefore(ctx, s.now().AddDate(0, 0, -days))
}
