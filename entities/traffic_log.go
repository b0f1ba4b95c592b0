package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

// TrafficLog is one periodic snapshot of a session, owned by a user.
type TrafficLog struct {
	ID               uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID         `json:"userId" gorm:"type:uuid;not null;index:idx_traffic_logs_user_id"`
	SessionID        string            `json:"sessionId" gorm:"type:varchar(64);not null;index:idx_traffic_logs_session_id;index:idx_traffic_logs_session_ts,priority:1"`
	Timestamp        time.Time         `json:"timestamp" gorm:"not null;index:idx_traffic_logs_timestamp;index:idx_traffic_logs_session_ts,priority:2"`
	VehicleCounts    Counts            `json:"vehicleCounts" gorm:"embedded;embeddedPrefix:count_"`
	TotalVehicles    int               `json:"totalVehicles" gorm:"not null;default:0"`
	VehicleBreakdown Breakdown         `json:"vehicleBreakdown" gorm:"embedded;embeddedPrefix:breakdown_"`
	SignalState      SignalState       `json:"signalState" gorm:"embedded;embeddedPrefix:signal_"`
	Events           []TrafficLogEvent `json:"events" gorm:"foreignKey:TrafficLogID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `json:"createdAt"`
}

func (TrafficLog) TableName() string {
	return "traffic_logs"
}

func (l *TrafficLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	return nil
}

type TrafficLogEvent struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	TrafficLogID uuid.UUID `json:"-" gorm:"type:uuid;not null;index:idx_traffic_log_events_log_id"`
	Type         string    `json:"type" gorm:"type:varchar(32);not null;index:idx_traffic_log_events_type"`
	Direction    string    `json:"direction,omitempty" gorm:"type:varchar(10)"`
	Message      string    `json:"message,omitempty" gorm:"type:text"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null"`
}

func (TrafficLogEvent) TableName() string {
	return "traffic_log_events"
}
