package dto

import (
	"clearpath-signals/constant"
	"clearpath-signals/entities"
	"encoding/json"
	"time"
)

// UpdateMessage is a state update pushed by the CV service for one session.
type UpdateMessage struct {
	SessionID        string                `json:"session_id" binding:"required"`
	Counts           *entities.Counts      `json:"counts"`
	SignalState      *entities.SignalState `json:"signal_state"`
	Frames           json.RawMessage       `json:"frames"`
	VehicleBreakdown *entities.Breakdown   `json:"vehicle_breakdown"`
}

type AlertMessage struct {
	SessionID string             `json:"session_id" binding:"required"`
	AlertType constant.AlertType `json:"alert_type" binding:"required,oneof=ambulance pedestrian heavy_traffic warning info"`
	Message   string             `json:"message" binding:"required"`
	Direction string             `json:"direction" binding:"omitempty,oneof=north south east west"`
	Metadata  map[string]any     `json:"metadata"`
}

type CompleteMessage struct {
	SessionID string `json:"session_id" binding:"required"`
}

// SimulationUpdateEvent is broadcast to dashboard subscribers after every update.
type SimulationUpdateEvent struct {
	SessionID        string               `json:"sessionId"`
	Counts           entities.Counts      `json:"counts"`
	SignalState      entities.SignalState `json:"signalState"`
	Frames           json.RawMessage      `json:"frames"`
	VehicleBreakdown *entities.Breakdown  `json:"vehicle_breakdown"`
}

type AlertEvent struct {
	SessionID string             `json:"sessionId"`
	AlertType constant.AlertType `json:"alertType"`
	Message   string             `json:"message"`
	Direction string             `json:"direction,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// VideoDispatch is sent to the CV service to start processing a session.
type VideoDispatch struct {
	SessionID string            `json:"session_id"`
	Videos    map[string]string `json:"videos"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	User    *entities.User `json:"user"`
}

type UploadResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	SessionID  string            `json:"sessionId"`
	VideoPaths map[string]string `json:"videoPaths"`
}

type StatusResponse struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	SessionID    string                 `json:"sessionId,omitempty"`
	CurrentState *entities.CurrentState `json:"currentState,omitempty"`
	StartedAt    *time.Time             `json:"startedAt,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
