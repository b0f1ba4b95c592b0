package dto

import (
	"clearpath-signals/entities"
	"fmt"
	"github.com/google/uuid"
	"time"
)

const (
	DefaultLogPage      = 1
	DefaultLogLimit     = 100
	DefaultLogRetention = 30
)

// LogQuery carries the query string of the traffic log endpoints.
type LogQuery struct {
	SessionID string `form:"sessionId"`
	Mode      string `form:"mode"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Limit     int    `form:"limit,default=100" binding:"min=1,max=1000"`
	Page      int    `form:"page,default=1" binding:"min=1"`
}

// LogFilter narrows traffic log queries. UserID is always applied.
type LogFilter struct {
	UserID    uuid.UUID
	SessionID string
	Mode      string
	From      *time.Time
	To        *time.Time
}

// Filter converts the query into a filter owned by userID.
func (q LogQuery) Filter(userID uuid.UUID) (LogFilter, error) {
	f := LogFilter{UserID: userID, SessionID: q.SessionID, Mode: q.Mode}
	var err error
	if f.From, err = ParseDate(q.StartDate); err != nil {
		return f, fmt.Errorf("startDate: %w", err)
	}
	if f.To, err = ParseDate(q.EndDate); err != nil {
		return f, fmt.Errorf("endDate: %w", err)
	}
	return f, nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps or bare dates. Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

type LogListResponse struct {
	Success    bool                  `json:"success"`
	Data       []entities.TrafficLog `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// LogStats aggregates the filtered logs. Averages and extremes are nil when no log matched.
type LogStats struct {
	TotalLogs        int64    `json:"totalLogs"`
	AvgVehiclesNorth *float64 `json:"avgVehiclesNorth,omitempty"`
	AvgVehiclesSouth *float64 `json:"avgVehiclesSouth,omitempty"`
	AvgVehiclesEast  *float64 `json:"avgVehiclesEast,omitempty"`
	AvgVehiclesWest  *float64 `json:"avgVehiclesWest,omitempty"`
	MaxVehicles      *float64 `json:"maxVehicles,omitempty"`
	MinVehicles      *float64 `json:"minVehicles,omitempty"`
	AvgTotalVehicles *float64 `json:"avgTotalVehicles,omitempty"`
}

type ModeCount struct {
	Mode  string `json:"mode"`
	Count int64  `json:"count"`
}

type EventCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type LogStatsResponse struct {
	Success           bool         `json:"success"`
	Stats             LogStats     `json:"stats"`
	ModeDistribution  []ModeCount  `json:"modeDistribution"`
	EventDistribution []EventCount `json:"eventDistribution"`
}

type SessionSummary struct {
	SessionID string    `json:"sessionId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	LogCount  int64     `json:"logCount"`
}

type SessionsResponse struct {
	Success  bool             `json:"success"`
	Sessions []SessionSummary `json:"sessions"`
}

type CleanupResponse struct {
	Success      bool   `json:"success"`
	DeletedCount int64  `json:"deletedCount"`
	Message      string `json:"message"`
}
