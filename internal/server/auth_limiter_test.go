package server

import (
	"testing"
	"time"
)

func TestFailureLimiterBlocksAfterMaxFailures(t *testing.T) {
	limiter := newFailureLimiter(3, time.Minute, 5*time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	key := "127.0.0.1|ann"

	for i := 0; i < 3; i++ {
		if !limiter.Allow(key, now) {
			t.Fatalf("attempt %d should be allowed", i)
		}
		limiter.RegisterFailure(key, now)
	}
	if limiter.Allow(key, now.Add(time.Minute)) {
		t.Fatal("expected key to be blocked")
	}
	if !limiter.Allow("127.0.0.1|bob", now) {
		t.Fatal("other keys must not be blocked")
	}
	if !limiter.Allow(key, now.Add(5*time.Minute)) {
		t.Fatal("expected block to expire")
	}
}

func TestFailureLimiterWindowResets(t *testing.T) {
	limiter := newFailureLimiter(2, time.Minute, time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	key := "127.0.0.1|ann"

	limiter.RegisterFailure(key, now)
	limiter.RegisterFailure(key, now.Add(2*time.Minute))
	if !limiter.Allow(key, now.Add(2*time.Minute)) {
		t.Fatal("failures outside the window must not accumulate")
	}

	limiter.RegisterFailure(key, now.Add(2*time.Minute))
	limiter.Reset(key)
	limiter.RegisterFailure(key, now.Add(2*time.Minute))
	if !limiter.Allow(key, now.Add(2*time.Minute)) {
		t.Fatal("reset must clear failures")
	}
}

func TestFailureLimiterNilAllows(t *testing.T) {
	var limiter *failureLimiter
	limiter.RegisterFailure("k", time.Now())
	if !limiter.Allow("k", time.Now()) {
		t.Fatal("nil limiter must allow")
	}
	if newFailureLimiter(0, time.Minute, time.Minute) != nil {
		t.Fatal("expected nil limiter for zero max failures")
	}
}
