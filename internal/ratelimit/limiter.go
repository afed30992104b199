package ratelimit

import (
	"sync"
	"time"

	"contact-service/internal/bucketing"
)

// entry is one fixed-window counter. It is replaced, not reset, once the
// window expires.
type entry struct {
	count   int
	resetAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]entry
}

// FixedWindowLimiter counts requests per client identifier in discrete,
// non-overlapping windows. Counters live for the process lifetime; stale
// identifiers are never collected.
type FixedWindowLimiter struct {
	window  time.Duration
	max     int
	buckets *bucketing.Manager
	shards  []shard

	now func() time.Time
}

func NewFixedWindowLimiter(window time.Duration, max int, buckets *bucketing.Manager) *FixedWindowLimiter {
	shards := make([]shard, buckets.ClientBuckets())
	for i := range shards {
		shards[i].entries = make(map[string]entry)
	}
	return &FixedWindowLimiter{
		window:  window,
		max:     max,
		buckets: buckets,
		shards:  shards,
		now:     time.Now,
	}
}

// Allow reports whether the identifier may proceed. The first request in a
// window (or the first ever) resets the counter to 1; at the cap the request
// is denied without incrementing further.
func (l *FixedWindowLimiter) Allow(identifier string) bool {
	now := l.now()
	s := &l.shards[l.buckets.ClientBucket(identifier)]

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[identifier]
	if !ok || now.After(e.resetAt) {
		s.entries[identifier] = entry{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if e.count >= l.max {
		return false
	}
	e.count++
	s.entries[identifier] = e
	return true
}
