package service

import (
	"clearpath-signals/entities"
	"clearpath-signals/repository"
	"context"
	"sync"
)

// snapshotWriter persists traffic log snapshots off the request path. A failed
// write goes to onError and never reaches the caller of Write.
type snapshotWriter struct {
	repo    repository.TrafficLogRepository
	onError func(ctx context.Context, log *entities.TrafficLog, err error)
	inline  bool
	wg      sync.WaitGroup
}

func (w *snapshotWriter) Write(ctx context.Context, log *entities.TrafficLog) {
	w.wg.Add(1)
	run := func() {
		defer w.wg.Done()
		if err := w.repo.CreateTrafficLog(ctx, log); err != nil {
			w.onError(ctx, log, err)
		}
	}
	if w.inline {
		run()
		return
	}
	go run()
}

// Wait blocks until every pending write has finished.
func (w *snapshotWriter) Wait() {
	w.wg.Wait()
}
