package bucketing

import (
	"hash"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// Manager assigns client identifiers to fixed shards and provides the
// time/date bucketing used by the rate limiter and the daily quota gate.
type Manager struct {
	clientBuckets int
	hasherPool    sync.Pool
}

func NewManager(clientBuckets int) *Manager {
	if clientBuckets <= 0 {
		clientBuckets = 1
	}
	m := &Manager{clientBuckets: clientBuckets}

	// Pool of hash functions to avoid allocation overhead on the hot path
	m.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return m
}

// ClientBuckets returns the configured shard count.
func (m *Manager) ClientBuckets() int {
	return m.clientBuckets
}

// ClientBucket returns a consistent shard for a client identifier
// (0 to clientBuckets-1).
func (m *Manager) ClientBucket(identifier string) int {
	hasher := m.hasherPool.Get().(hash.Hash64)
	defer m.hasherPool.Put(hasher)

	hasher.Reset()
	_, _ = hasher.Write([]byte(identifier))

	return int(hasher.Sum64() % uint64(m.clientBuckets))
}

// TimeBucket returns the start of the fixed window containing t.
func (m *Manager) TimeBucket(t time.Time, window time.Duration) int64 {
	secs := int64(window / time.Second)
	if secs <= 0 {
		return t.Unix()
	}
	return t.Unix() / secs * secs
}

// DateBucket returns the UTC calendar date for t as YYYY-MM-DD.
func (m *Manager) DateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
