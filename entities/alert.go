package entities

import (
	"clearpath-signals/constant"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

type Alert struct {
	ID        uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID string             `json:"sessionId" gorm:"type:varchar(64);not null;index:idx_alerts_session_id"`
	AlertType constant.AlertType `json:"alertType" gorm:"type:varchar(20);not null"`
	Message   string             `json:"message" gorm:"type:text;not null"`
	Direction string             `json:"direction,omitempty" gorm:"type:varchar(10)"`
	Metadata  datatypes.JSONMap  `json:"metadata,omitempty"`
	Timestamp time.Time          `json:"timestamp" gorm:"not null;index:idx_alerts_timestamp"`
	CreatedAt time.Time          `json:"createdAt"`
}

func (Alert) TableName() string {
	return "alerts"
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}
