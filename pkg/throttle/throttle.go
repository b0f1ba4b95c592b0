// Package throttle gates how often a keyed action may run.
//
// Entries live in a size-bounded LRU whose items expire after a TTL, so keys
// that are never explicitly forgotten (abandoned or failed sessions) age out
// instead of accumulating for the life of the process.
package throttle

import (
	"github.com/hashicorp/golang-lru/v2/expirable"
	"sync"
	"time"
)

const (
	DefaultInterval = 3 * time.Second
	DefaultTTL      = 10 * time.Minute
	DefaultCapacity = 10000
)

type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     *expirable.LRU[string, time.Time]
}

// New returns a limiter that allows one action per key every interval.
// Non-positive arguments fall back to the package defaults. ttl is raised to
// interval when shorter, otherwise entries could expire before they throttle.
func New(interval, ttl time.Duration, capacity int) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl < interval {
		ttl = interval
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Limiter{
		interval: interval,
		last:     expirable.NewLRU[string, time.Time](capacity, nil, ttl),
	}
}

// Allow reports whether key may act at now and, if so, records now as its
// last action. Check and record happen under one lock.
func (l *Limiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.last.Get(key); ok && now.Sub(last) < l.interval {
		return false
	}
	l.last.Add(key, now)
	return true
}

// Forget drops the key so its next Allow succeeds immediately.
func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last.Remove(key)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	return l.last.Len()
}

func (l *Limiter) Interval() time.Duration {
	return l.interval
}
