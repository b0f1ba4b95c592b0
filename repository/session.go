package repository

import (
	"clearpath-signals/constant"
	"clearpath-signals/entities"
	"context"
	"time"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, session *entities.Session) error
	FindSessionBySessionID(ctx context.Context, sessionID string) (*entities.Session, error)
	FindLatestSession(ctx context.Context) (*entities.Session, error)
	UpdateSessionState(ctx context.Context, sessionID string, counts *entities.Counts, signal *entities.SignalState) error
	UpdateSessionStatus(ctx context.Context, sessionID string, status constant.SessionStatus, completedAt *time.Time) error
}

func (r *repo) CreateSession(ctx context.Context, session *entities.Session) error {
	return translate(r.db.WithContext(ctx).Create(session).Error)
}

func (r *repo) FindSessionBySessionID(ctx context.Context, sessionID string) (*entities.Session, error) {
	session := &entities.Session{}
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(session).Error
	if err != nil {
		return nil, translate(err)
	}

	return session, nil
}

func (r *repo) FindLatestSession(ctx context.Context) (*entities.Session, error) {
	session := &entities.Session{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Take(session).Error
	if err != nil {
		return nil, translate(err)
	}

	return session, nil
}

// UpdateSessionState writes the given parts of the live state and nothing else.
// A session that is missing or already completed/failed is left untouched and
// reported as ErrClosed.
func (r *repo) UpdateSessionState(ctx context.Context, sessionID string, counts *entities.Counts, signal *entities.SignalState) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if counts != nil {
		updates["count_north"] = counts.North
		updates["count_south"] = counts.South
		updates["count_east"] = counts.East
		updates["count_west"] = counts.West
	}
	if signal != nil {
		updates["signal_north"] = signal.North
		updates["signal_south"] = signal.South
		updates["signal_east"] = signal.East
		updates["signal_west"] = signal.West
		updates["signal_active_direction"] = signal.ActiveDirection
		updates["signal_mode"] = signal.Mode
		updates["signal_timer"] = signal.Timer
		updates["signal_yellow_phase"] = signal.YellowPhase
	}

	terminal := []constant.SessionStatus{constant.SessionStatusCompleted, constant.SessionStatusFailed}
	res := r.db.WithContext(ctx).Model(&entities.Session{}).
		Where("session_id = ? AND status NOT IN ?", sessionID, terminal).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClosed
	}
	return nil
}

func (r *repo) UpdateSessionStatus(ctx context.Context, sessionID string, status constant.SessionStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	res := r.db.WithContext(ctx).Model(&entities.Session{}).Where("session_id = ?", sessionID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
