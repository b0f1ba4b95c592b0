package service

import (
	"clearpath-signals/dto"
	"clearpath-signals/repository"
	"context"
	"fmt"
	"github.com/google/uuid"
	"time"
)

// LogService serves the traffic log history of one user at a time.
type LogService interface {
	List(ctx context.Context, filter dto.LogFilter, page, limit int) (*dto.LogListResponse, error)
	Stats(ctx context.Context, filter dto.LogFilter) (*dto.LogStatsResponse, error)
	Sessions(ctx context.Context, userID uuid.UUID) ([]dto.SessionSummary, error)
	Cleanup(ctx context.Context, userID uuid.UUID, days int) (int64, error)
}

type logService struct {
	repo repository.TrafficLogRepository
	now  func() time.Time
}

func NewLogService(repo repository.TrafficLogRepository) LogService {
	return &logService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *logService) List(ctx context.Context, filter dto.LogFilter, page, limit int) (*dto.LogListResponse, error) {
	if page < 1 {
		page = dto.DefaultLogPage
	}
	if limit < 1 {
		limit = dto.DefaultLogLimit
	}

	logs, total, err := s.repo.ListTrafficLogs(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list traffic logs: %w", err)
	}

	return &dto.LogListResponse{
		Success:    true,
		Data:       logs,
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

func (s *logService) Stats(ctx context.Context, filter dto.LogFilter) (*dto.LogStatsResponse, error) {
	// mode is a list filter only
	filter.Mode = ""

	stats, err := s.repo.TrafficLogStats(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("traffic log stats: %w", err)
	}
	modes, err := s.repo.ModeDistribution(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mode distribution: %w", err)
	}
	events, err := s.repo.EventDistribution(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("event distribution: %w", err)
	}

	return &dto.LogStatsResponse{
		Success:           true,
		Stats:             stats,
		ModeDistribution:  modes,
		EventDistribution: events,
	}, nil
}

func (s *logService) Sessions(ctx context.Context, userID uuid.UUID) ([]dto.SessionSummary, error) {
	sessions, err := s.repo.DistinctSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("distinct sessions: %w", err)
	}
	return sessions, nil
}

// Cleanup deletes the user's logs older than days days.
func (s *logService) Cleanup(ctx context.Context, userID uuid.UUID, days int) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("%w: days must not be negative", ErrValidation)
	}
	cutoff := s.now().AddDate(0, 0, -days)
	deleted, err := s.repo.PurgeTrafficLogs(ctx, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge traffic logs: %w", err)
	}
	return deleted, nil
}
