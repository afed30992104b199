package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// -------------------- SUBMISSION MODEL --------------------

// Submission is one incoming contact-form payload. It is produced once per
// request and discarded after processing.
type Submission struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	WechatID string `json:"wechatId,omitempty"`
	Message  string `json:"message"`
	Phone    string `json:"phone,omitempty"` // honeypot; humans never see this field
}

// -------------------- ATTEMPT MODEL --------------------

// AttemptRecord is the immutable log entry for a submission that reached the
// scoring stage. Oldest records are evicted once the log exceeds capacity.
type AttemptRecord struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ClientIP  string    `json:"ip"`
	SpamScore *int      `json:"spamScore,omitempty"`
	Reason    string    `json:"reason"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	WasSent   bool      `json:"wasSent"`
}

// DailyStats is the per-day breakdown served to the admin viewer.
type DailyStats struct {
	Date          string `json:"date"`
	SentToday     int    `json:"sentToday"`
	FilteredToday int    `json:"filteredToday"`
	TotalToday    int    `json:"totalToday"`
	LimitReached  bool   `json:"limitReached"`
	Limit         int    `json:"limit"`
}

// -------------------- OUTBOUND MAIL MODEL --------------------

// OutboundMessage is the sanitized message handed to the mail provider.
type OutboundMessage struct {
	Name      string
	Email     string
	WechatID  string
	Message   string
	ClientIP  string
	Timestamp time.Time
}

// -------------------- INTERFACES --------------------

// Limiter decides whether a client identifier may proceed.
type Limiter interface {
	Allow(identifier string) bool
}

// AttemptLog defines the interface for the bounded in-memory attempt store.
// Dates are UTC strings in YYYY-MM-DD form.
type AttemptLog interface {
	Append(rec AttemptRecord)
	Recent(n int) []AttemptRecord
	All() []AttemptRecord
	Clear()
	Len() int
	DailyCount(date string) int
	DailyStats(date string, limit int) DailyStats
}

// Notifier delivers accepted messages via the external mail provider.
// At-most-once: no retries, no queueing.
type Notifier interface {
	Send(ctx context.Context, msg *OutboundMessage) error
	SendTest(ctx context.Context) error
}
