package repository

import (
	"clearpath-signals/dto"
	"clearpath-signals/entities"
	"context"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"slices"
	"time"
)

// TrafficLogRepository is scoped by user on every read and delete.
type TrafficLogRepository interface {
	CreateTrafficLog(ctx context.Context, log *entities.TrafficLog) error
	ListTrafficLogs(ctx context.Context, filter dto.LogFilter, page, limit int) ([]entities.TrafficLog, int64, error)
	TrafficLogStats(ctx context.Context, filter dto.LogFilter) (dto.LogStats, error)
	ModeDistribution(ctx context.Context, filter dto.LogFilter) ([]dto.ModeCount, error)
	EventDistribution(ctx context.Context, filter dto.LogFilter) ([]dto.EventCount, error)
	DistinctSessions(ctx context.Context, userID uuid.UUID) ([]dto.SessionSummary, error)
	PurgeTrafficLogs(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
}

// logScope applies the owner first, then the optional filters.
func logScope(f dto.LogFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("traffic_logs.user_id = ?", f.UserID)
		if f.SessionID != "" {
			db = db.Where("traffic_logs.session_id = ?", f.SessionID)
		}
		if f.Mode != "" {
			db = db.Where("traffic_logs.signal_mode = ?", f.Mode)
		}
		if f.From != nil {
			db = db.Where("traffic_logs.timestamp >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("traffic_logs.timestamp <= ?", *f.To)
		}
		return db
	}
}

func (r *repo) CreateTrafficLog(ctx context.Context, log *entities.TrafficLog) error {
	return translate(r.db.WithContext(ctx).Create(log).Error)
}

func (r *repo) ListTrafficLogs(ctx context.Context, filter dto.LogFilter, page, limit int) ([]entities.TrafficLog, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entities.TrafficLog{}).Scopes(logScope(filter)).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	logs := make([]entities.TrafficLog, 0)
	err = r.db.WithContext(ctx).
		Scopes(logScope(filter)).
		Preload("Events").
		Order("traffic_logs.timestamp DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *repo) TrafficLogStats(ctx context.Context, filter dto.LogFilter) (dto.LogStats, error) {
	var stats dto.LogStats
	err := r.db.WithContext(ctx).
		Model(&entities.TrafficLog{}).
		Scopes(logScope(filter)).
		Select(`COUNT(*) AS total_logs,
			AVG(count_north) AS avg_vehicles_north,
			AVG(count_south) AS avg_vehicles_south,
			AVG(count_east) AS avg_vehicles_east,
			AVG(count_west) AS avg_vehicles_west,
			MAX(total_vehicles) AS max_vehicles,
			MIN(total_vehicles) AS min_vehicles,
			AVG(total_vehicles) AS avg_total_vehicles`).
		Scan(&stats).Error
	if err != nil {
		return dto.LogStats{}, err
	}
	return stats, nil
}

func (r *repo) ModeDistribution(ctx context.Context, filter dto.LogFilter) ([]dto.ModeCount, error) {
	modes := make([]dto.ModeCount, 0)
	err := r.db.WithContext(ctx).
		Model(&entities.TrafficLog{}).
		Scopes(logScope(filter)).
		Select("traffic_logs.signal_mode AS mode, COUNT(*) AS count").
		Group("traffic_logs.signal_mode").
		Order("COUNT(*) DESC, traffic_logs.signal_mode ASC").
		Scan(&modes).Error
	if err != nil {
		return nil, err
	}
	return modes, nil
}

func (r *repo) EventDistribution(ctx context.Context, filter dto.LogFilter) ([]dto.EventCount, error) {
	events := make([]dto.EventCount, 0)
	err := r.db.WithContext(ctx).
		Model(&entities.TrafficLogEvent{}).
		Joins("JOIN traffic_logs ON traffic_logs.id = traffic_log_events.traffic_log_id").
		Scopes(logScope(filter)).
		Select("traffic_log_events.type AS type, COUNT(*) AS count").
		Group("traffic_log_events.type").
		Order("COUNT(*) DESC, traffic_log_events.type ASC").
		Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) DistinctSessions(ctx context.Context, userID uuid.UUID) ([]dto.SessionSummary, error) {
	var groups []struct {
		SessionID string
		LogCount  int64
		StartTime dbTime
		EndTime   dbTime
	}
	err := r.db.WithContext(ctx).
		Model(&entities.TrafficLog{}).
		Where("user_id = ?", userID).
		Select("session_id, COUNT(*) AS log_count, MIN(timestamp) AS start_time, MAX(timestamp) AS end_time").
		Group("session_id").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.SessionSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, dto.SessionSummary{
			SessionID: g.SessionID,
			StartTime: g.StartTime.Time,
			EndTime:   g.EndTime.Time,
			LogCount:  g.LogCount,
		})
	}

	slices.SortFunc(summaries, func(a, b dto.SessionSummary) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return summaries, nil
}

// PurgeTrafficLogs deletes the user's logs strictly older than cutoff, with their events.
func (r *repo) PurgeTrafficLogs(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&entities.TrafficLog{}).Select("id").Where("user_id = ? AND timestamp < ?", userID, cutoff)
		if err := tx.Where("traffic_log_id IN (?)", expired).Delete(&entities.TrafficLogEvent{}).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND timestamp < ?", userID, cutoff).Delete(&entities.TrafficLog{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
