package store

import (
	"sync"

	"contact-service/internal/model"
)

// AttemptLog is the bounded in-memory store of submission attempts. Records
// are immutable once appended; the oldest are evicted past capacity. The
// daily email count is derived from it, never stored.
type AttemptLog struct {
	mu       sync.Mutex
	capacity int
	records  []model.AttemptRecord
}

func NewAttemptLog(capacity int) *AttemptLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &AttemptLog{
		capacity: capacity,
		records:  make([]model.AttemptRecord, 0, capacity),
	}
}

// Append stores a record, evicting the oldest entries when over capacity.
func (l *AttemptLog) Append(rec model.AttemptRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)
	if len(l.records) > l.capacity {
		l.records = l.records[len(l.records)-l.capacity:]
	}
}

// Recent returns up to n of the newest records, oldest first.
func (l *AttemptLog) Recent(n int) []model.AttemptRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]model.AttemptRecord, n)
	copy(out, l.records[len(l.records)-n:])
	return out
}

// All returns a copy of every stored record.
func (l *AttemptLog) All() []model.AttemptRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.AttemptRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Clear empties the store.
func (l *AttemptLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = l.records[:0]
}

func (l *AttemptLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// DailyCount returns the number of records actually sent on the given UTC
// date (YYYY-MM-DD).
func (l *AttemptLog) DailyCount(date string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, rec := range l.records {
		if rec.WasSent && recordDate(rec) == date {
			count++
		}
	}
	return count
}

// DailyStats returns the sent/filtered breakdown for the given UTC date.
func (l *AttemptLog) DailyStats(date string, limit int) model.DailyStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := model.DailyStats{Date: date, Limit: limit}
	for _, rec := range l.records {
		if recordDate(rec) != date {
			continue
		}
		stats.TotalToday++
		if rec.WasSent {
			stats.SentToday++
		} else {
			stats.FilteredToday++
		}
	}
	stats.LimitReached = stats.SentToday >= limit
	return stats
}

func recordDate(rec model.AttemptRecord) string {
	return rec.Timestamp.UTC().Format("2006-01-02")
}
