package entities

import (
	"clearpath-signals/constant"
	"github.com/google/uuid"
	"time"
)

type Videos struct {
	North string `json:"north" gorm:"type:varchar(500);not null"`
	South string `json:"south" gorm:"type:varchar(500);not null"`
	East  string `json:"east" gorm:"type:varchar(500);not null"`
	West  string `json:"west" gorm:"type:varchar(500);not null"`
}

type CurrentState struct {
	Counts      Counts      `json:"counts" gorm:"embedded;embeddedPrefix:count_"`
	SignalState SignalState `json:"signalState" gorm:"embedded;embeddedPrefix:signal_"`
}

// Session is one simulation run over the four approach videos.
type Session struct {
	ID           uint                   `json:"-" gorm:"primaryKey"`
	SessionID    string                 `json:"sessionId" gorm:"type:varchar(64);not null;uniqueIndex:idx_sessions_session_id"`
	Videos       Videos                 `json:"videos" gorm:"embedded;embeddedPrefix:video_"`
	Status       constant.SessionStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_sessions_status"`
	StartedAt    time.Time              `json:"startedAt" gorm:"not null"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty"`
	UserID       *uuid.UUID             `json:"userId,omitempty" gorm:"type:uuid;index:idx_sessions_user_id"`
	CurrentState CurrentState           `json:"currentState" gorm:"embedded"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

func (Session) TableName() string {
	return "sessions"
}
