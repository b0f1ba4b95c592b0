package handler

import (
	"clearpath-signals/dto"
	"clearpath-signals/entities"
	"context"
	"github.com/google/uuid"
	"net/http"
	"testing"
	"time"
)

func (s *testServer) addLog(t *testing.T, userID uuid.UUID, sessionID string, at time.Time) {
	t.Helper()
	err := s.repo.CreateTrafficLog(context.Background(), &entities.TrafficLog{
		UserID:        userID,
		SessionID:     sessionID,
		Timestamp:     at,
		VehicleCounts: entities.Counts{North: 3, West: 1},
		TotalVehicles: 4,
		SignalState:   entities.SignalState{Mode: "normal"}.WithDefaults(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestLogsRequireAuth(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]struct {
		token   string
		message string
	}{
		"missing": {"", "No token provided. Please login."},
		"invalid": {"not-a-jwt", "Invalid token. Please login again."},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/logs", nil, tc.token)
			expectStatus(t, rec, http.StatusUnauthorized)
			var resp dto.ErrorResponse
			decodeBody(t, rec, &resp)
			if resp.Message != tc.message {
				t.Errorf("message = %q, want %q", resp.Message, tc.message)
			}
		})
	}
}

func TestLogsScopedToCaller(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.register(t, "alice@example.com")
	bob, _ := s.register(t, "bob@example.com")

	now := time.Now().UTC()
	s.addLog(t, alice.ID, "session-a", now.Add(-time.Minute))
	s.addLog(t, alice.ID, "session-a", now)
	s.addLog(t, bob.ID, "session-b", now)

	rec := s.do(t, http.MethodGet, "/api/logs?limit=1", nil, aliceToken)
	expectStatus(t, rec, http.StatusOK)
	var list dto.LogListResponse
	decodeBody(t, rec, &list)
	if list.Pagination.Total != 2 || list.Pagination.Pages != 2 || len(list.Data) != 1 {
		t.Fatalf("list = %+v", list.Pagination)
	}
	if list.Data[0].UserID != alice.ID {
		t.Errorf("foreign log returned")
	}

	rec = s.do(t, http.MethodGet, "/api/logs?sessionId=session-b", nil, aliceToken)
	decodeBody(t, rec, &list)
	if list.Pagination.Total != 0 {
		t.Errorf("bob's session visible to alice: %+v", list.Pagination)
	}

	rec = s.do(t, http.MethodGet, "/api/logs/stats", nil, aliceToken)
	expectStatus(t, rec, http.StatusOK)
	var stats dto.LogStatsResponse
	decodeBody(t, rec, &stats)
	if stats.Stats.TotalLogs != 2 || stats.Stats.AvgTotalVehicles == nil || *stats.Stats.AvgTotalVehicles != 4 {
		t.Errorf("stats = %+v", stats.Stats)
	}

	rec = s.do(t, http.MethodGet, "/api/logs/sessions", nil, aliceToken)
	var sessions dto.SessionsResponse
	decodeBody(t, rec, &sessions)
	if len(sessions.Sessions) != 1 || sessions.Sessions[0].LogCount != 2 {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestLogsBadQuery(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "carol@example.com")

	expectStatus(t, s.do(t, http.MethodGet, "/api/logs?startDate=yesterday", nil, token), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodGet, "/api/logs?limit=0", nil, token), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodDelete, "/api/logs/cleanup?days=abc", nil, token), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodDelete, "/api/logs/cleanup?days=-2", nil, token), http.StatusBadRequest)
}

func TestLogsCleanup(t *testing.T) {
	s := newTestServer(t)
	user, token := s.register(t, "dave@example.com")
	now := time.Now().UTC()
	s.addLog(t, user.ID, "session-1", now.AddDate(0, 0, -45))
	s.addLog(t, user.ID, "session-1", now)

	rec := s.do(t, http.MethodDelete, "/api/logs/cleanup", nil, token)
	expectStatus(t, rec, http.StatusOK)
	var resp dto.CleanupResponse
	decodeBody(t, rec, &resp)
	if resp.DeletedCount != 1 || !resp.Success {
		t.Errorf("cleanup = %+v", resp)
	}
}
