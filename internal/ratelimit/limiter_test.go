// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock advances only when slept on.
type fakeClock struct {
	t      time.Time
	slept  []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
}

func newTestLimiter(intervals map[string]time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	l := New(intervals)
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestAcquireFirstCallNoWait(t *testing.T) {
	l, clock := newTestLimiter(map[string]time.Duration{"flash": 500 * time.Millisecond})

	l.Acquire("flash")

	assert.Empty(t, clock.slept)
}

func TestAcquireWaitsRemainingInterval(t *testing.T) {
	l, clock := newTestLimiter(map[string]time.Duration{"pro": 1100 * time.Millisecond})

	l.Acquire("pro")
	clock.t = clock.t.Add(300 * time.Millisecond)
	l.Acquire("pro")

	assert.Equal(t, []time.Duration{800 * time.Millisecond}, clock.slept)
}

func TestAcquireAfterIntervalElapsedNoWait(t *testing.T) {
	l, clock := newTestLimiter(map[string]time.Duration{"pro": 1100 * time.Millisecond})

	l.Acquire("pro")
	clock.t = clock.t.Add(2 * time.Second)
	l.Acquire("pro")

	assert.Empty(t, clock.slept)
}

func TestAcquireTiersAreIndependent(t *testing.T) {
	l, clock := newTestLimiter(map[string]time.Duration{
		"flash": 500 * time.Millisecond,
		"pro":   1100 * time.Millisecond,
	})

	l.Acquire("flash")
	l.Acquire("pro")

	// Neither tier should have waited on the other's timestamp.
	assert.Empty(t, clock.slept)

	l.Acquire("flash")
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, clock.slept)
}

func TestAcquireUnknownTierPassesThrough(t *testing.T) {
	l, clock := newTestLimiter(map[string]time.Duration{"flash": time.Second})

	l.Acquire("unknown")
	l.Acquire("unknown")

	assert.Empty(t, clock.slept)
}
