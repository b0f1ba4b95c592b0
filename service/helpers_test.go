package service

import (
	"clearpath-signals/constant"
	"clearpath-signals/entities"
	"clearpath-signals/pkg/broadcast"
	"clearpath-signals/pkg/testdb"
	"clearpath-signals/repository"
	"context"
	"github.com/google/uuid"
	"sync"
	"testing"
	"time"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type published struct {
	topic string
	name  string
	data  any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

var _ broadcast.Publisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) Publish(topic, name string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, name: name, data: data})
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

// testClock is a settable clock shared by the service under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newRepo(t *testing.T) repository.Repository {
	t.Helper()
	return repository.NewRepo(testdb.Open(t))
}

func seedSession(t *testing.T, repo repository.Repository, sessionID string, owner *uuid.UUID) {
	t.Helper()
	err := repo.CreateSession(context.Background(), &entities.Session{
		SessionID: sessionID,
		Status:    constant.SessionStatusProcessing,
		StartedAt: base,
		UserID:    owner,
		CurrentState: entities.CurrentState{
			SignalState: entities.SignalState{}.WithDefaults(),
		},
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func countRows(t *testing.T, repo repository.Repository, model any) int64 {
	t.Helper()
	var n int64
	if err := repo.GetDB().Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
