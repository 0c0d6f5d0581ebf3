// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit spaces outbound calls to rate-limited services.
// See docs/ARCHITECTURE.md § Rate Limiting.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces a minimum interval between consecutive calls per tier.
// It is a simple leaky bucket: Acquire blocks until the tier's interval has
// elapsed since its previous call, then stamps the call time. There is no
// burst allowance.
type Limiter struct {
	mu        sync.Mutex
	intervals map[string]time.Duration
	lastCall  map[string]time.Time

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a Limiter with the given minimum interval per tier name.
func New(intervals map[string]time.Duration) *Limiter {
	cp := make(map[string]time.Duration, len(intervals))
	for tier, iv := range intervals {
		cp[tier] = iv
	}
	return &Limiter{
		intervals: cp,
		lastCall:  make(map[string]time.Time),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Acquire blocks until a call on the named tier is allowed and records the
// call time. Unknown tiers pass through without waiting.
func (l *Limiter) Acquire(tier string) {
	l.mu.Lock()
	interval := l.intervals[tier]
	last, called := l.lastCall[tier]
	wait := time.Duration(0)
	if called && interval > 0 {
		if elapsed := l.now().Sub(last); elapsed < interval {
			wait = interval - elapsed
		}
	}
	if wait > 0 {
		// Hold the lock through the sleep so concurrent callers on the same
		// tier queue up instead of racing the timestamp.
		l.sleep(wait)
	}
	l.lastCall[tier] = l.now()
	l.mu.Unlock()
}
