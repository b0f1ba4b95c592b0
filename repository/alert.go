package repository

import (
	"clearpath-signals/entities"
	"context"
	"time"
)

type AlertRepository interface {
	CreateAlert(ctx context.Context, alert *entities.Alert) error
	ListAlertsBySession(ctx context.Context, sessionID string, limit int) ([]*entities.Alert, error)
	PurgeAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func (r *repo) CreateAlert(ctx context.Context, alert *entities.Alert) error {
	return translate(r.db.WithContext(ctx).Create(alert).Error)
}

func (r *repo) ListAlertsBySession(ctx context.Context, sessionID string, limit int) ([]*entities.Alert, error) {
	alerts := make([]*entities.Alert, 0)
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repo) PurgeAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&entities.Alert{})
	return res.RowsAffected, res.Error
}
