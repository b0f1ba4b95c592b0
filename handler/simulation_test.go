package handler

import (
	"clearpath-signals/constant"
	"clearpath-signals/dto"
	"clearpath-signals/entities"
	"clearpath-signals/pkg/broadcast"
	"net/http"
	"testing"
	"time"
)

func TestStatusIdleThenLatest(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/simulation/status", nil, "")
	expectStatus(t, rec, http.StatusOK)
	var idle dto.StatusResponse
	decodeBody(t, rec, &idle)
	if idle.Status != "idle" {
		t.Errorf("status = %+v", idle)
	}

	s.seedSession(t, "session-1", nil)
	rec = s.do(t, http.MethodGet, "/api/simulation/status", nil, "")
	var latest dto.StatusResponse
	decodeBody(t, rec, &latest)
	if latest.Status != "processing" || latest.SessionID != "session-1" || latest.CurrentState == nil {
		t.Errorf("status = %+v", latest)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/simulation/session-404", nil, "")
	expectStatus(t, rec, http.StatusNotFound)
	var resp dto.ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Success || resp.Message != "Simulation not found" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestUpdateEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.seedSession(t, "session-1", nil)

	events := make(chan broadcast.Event, 4)
	if err := s.hub.Subscribe("dashboard", "session-1", events); err != nil {
		t.Fatal(err)
	}

	body := map[string]any{
		"session_id":   "session-1",
		"counts":       map[string]int{"north": 5, "south": 2, "east": 0, "west": 1},
		"signal_state": map[string]any{"north": "green", "activeDirection": "north", "timer": 20},
	}
	rec := s.do(t, http.MethodPost, "/api/simulation/update", body, "")
	expectStatus(t, rec, http.StatusOK)

	select {
	case ev := <-events:
		if ev.Name != constant.EventSimulationUpdate {
			t.Errorf("event = %s", ev.Name)
		}
		payload := ev.Data.(dto.SimulationUpdateEvent)
		if payload.Counts.North != 5 || payload.SignalState.North != constant.SignalGreen || payload.SignalState.East != constant.SignalRed {
			t.Errorf("payload = %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no broadcast")
	}

	rec = s.do(t, http.MethodGet, "/api/simulation/session-1", nil, "")
	expectStatus(t, rec, http.StatusOK)
	var session entities.Session
	decodeBody(t, rec, &session)
	if session.CurrentState.Counts.North != 5 {
		t.Errorf("stored counts = %+v", session.CurrentState.Counts)
	}
}

func TestUpdateErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/simulation/update", map[string]any{"counts": map[string]int{"north": 1}}, "")
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, http.MethodPost, "/api/simulation/update", map[string]any{"session_id": "session-x"}, "")
	expectStatus(t, rec, http.StatusNotFound)

	s.seedSession(t, "session-1", nil)
	expectStatus(t, s.do(t, http.MethodPost, "/api/simulation/complete", map[string]any{"session_id": "session-1"}, ""), http.StatusOK)
	rec = s.do(t, http.MethodPost, "/api/simulation/update", map[string]any{"session_id": "session-1"}, "")
	expectStatus(t, rec, http.StatusConflict)

	expectStatus(t, s.do(t, http.MethodPost, "/api/simulation/complete", map[string]any{"session_id": "nope"}, ""), http.StatusNotFound)
}

func TestAlertEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/simulation/alert", map[string]any{
		"session_id": "session-1",
		"alert_type": "siren",
		"message":    "x",
	}, "")
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, http.MethodPost, "/api/simulation/alert", map[string]any{
		"session_id": "session-1",
		"alert_type": "ambulance",
		"message":    "Ambulance detected",
		"direction":  "east",
		"metadata":   map[string]any{"confidence": 0.9},
	}, "")
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodGet, "/api/simulation/session-1/alerts", nil, "")
	expectStatus(t, rec, http.StatusOK)
	var alerts []entities.Alert
	decodeBody(t, rec, &alerts)
	if len(alerts) != 1 || alerts[0].Direction != "east" || alerts[0].AlertType != constant.AlertTypeAmbulance {
		t.Errorf("alerts = %+v", alerts)
	}
}
