package server

import (
	"sync"
	"time"
)

// failureLimiter blocks a key after repeated failures inside a window.
// A nil limiter allows everything.
type failureLimiter struct {
	mu          sync.Mutex
	entries     map[string]failureEntry
	maxFailures int
	window      time.Duration
	blockedFor  time.Duration
	staleAfter  time.Duration
	ops         int
}

type failureEntry struct {
	failures     int
	windowStart  time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

const failureLimiterSweepEvery = 64

func newFailureLimiter(maxFailures int, window, blockedFor time.Duration) *failureLimiter {
	if maxFailures <= 0 || window <= 0 || blockedFor <= 0 {
		return nil
	}
	staleAfter := 2 * max(window, blockedFor)
	return &failureLimiter{
		entries:     make(map[string]failureEntry),
		maxFailures: maxFailures,
		window:      window,
		blockedFor:  blockedFor,
		staleAfter:  max(staleAfter, 10*time.Minute),
	}
}

func (l *failureLimiter) Allow(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.entries[key]
	entry.lastSeen = now
	allowed := entry.blockedUntil.IsZero() || !now.Before(entry.blockedUntil)
	if allowed {
		entry.blockedUntil = time.Time{}
		if !entry.windowStart.IsZero() && now.Sub(entry.windowStart) > l.window {
			entry.failures = 0
			entry.windowStart = time.Time{}
		}
	}
	l.entries[key] = entry
	l.sweepLocked(now)
	return allowed
}

func (l *failureLimiter) RegisterFailure(key string, now time.Time) {
	if l == nil || key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.entries[key]
	if entry.windowStart.IsZero() || now.Sub(entry.windowStart) > l.window {
		entry.failures = 0
		entry.windowStart = now
	}
	entry.failures++
	if entry.failures >= l.maxFailures {
		entry.blockedUntil = now.Add(l.blockedFor)
		entry.failures = 0
		entry.windowStart = time.Time{}
	}
	entry.lastSeen = now
	l.entries[key] = entry
	l.sweepLocked(now)
}

func (l *failureLimiter) Reset(key string) {
	if l == nil || key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

func (l *failureLimiter) sweepLocked(now time.Time) {
	l.ops++
	if l.ops%failureLimiterSweepEvery != 0 {
		return
	}
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > l.staleAfter {
			delete(l.entries, key)
		}
	}
}
