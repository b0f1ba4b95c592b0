package service

import (
	"clearpath-signals/constant"
	"clearpath-signals/entities"
	"context"
	"errors"
	"testing"
	"time"
)

func TestSimulationReads(t *testing.T) {
	repo := newRepo(t)
	svc := NewSimulationService(repo)
	ctx := context.Background()

	latest, err := svc.Latest(ctx)
	if err != nil || latest != nil {
		t.Fatalf("empty store: %+v, %v", latest, err)
	}

	seedSession(t, repo, "s1", nil)
	seedSession(t, repo, "s2", nil)
	latest, err = svc.Latest(ctx)
	if err != nil || latest.SessionID != "s2" {
		t.Fatalf("latest = %+v, %v", latest, err)
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("missing: got %v", err)
	}
	got, err := svc.Get(ctx, "s1")
	if err != nil || got.SessionID != "s1" {
		t.Errorf("get = %+v, %v", got, err)
	}
}

func TestPurgeAlerts(t *testing.T) {
	repo := newRepo(t)
	svc := &simulationService{repo: repo, now: func() time.Time { return base }}
	ctx := context.Background()

	for _, age := range []int{40, 31, 5} {
		err := repo.CreateAlert(ctx, &entities.Alert{
			SessionID: "s1",
			AlertType: constant.AlertTypeInfo,
			Message:   "tick",
			Timestamp: base.AddDate(0, 0, -age),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	purged, err := svc.PurgeAlerts(ctx, 30)
	if err != nil {
		t.Fatal(err)
	}
	if purged != 2 {
		t.Errorf("purged = %d, want 2", purged)
	}
	alerts, _ := svc.Alerts(ctx, "s1")
	if len(alerts) != 1 {
		t.Errorf("alerts left = %d", len(alerts))
	}
	if _, err := svc.PurgeAlerts(ctx, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("negative days: got %v", err)
	}
}
