package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contact-service/internal/bucketing"
	"contact-service/internal/config"
	"contact-service/internal/model"
	"contact-service/internal/spam"
	"contact-service/internal/util"
)

// Per-field maximum lengths applied by the sanitizer.
const (
	maxNameLen    = 100
	maxEmailLen   = 254
	maxWechatLen  = 50
	maxMessageLen = 5000
)

// honeypotScore is the fixed score recorded for bot submissions, well clear
// of any threshold and recognizable in the admin view.
const honeypotScore = 100

var (
	ErrRateLimited = errors.New("too many requests")
	ErrDailyLimit  = errors.New("daily email limit reached")
)

// ValidationError carries a reason safe to show the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// LimitStatus is the public view of the daily quota, used by the page to
// proactively disable the form.
type LimitStatus struct {
	DailyCount   int  `json:"dailyCount"`
	LimitReached bool `json:"limitReached"`
	Limit        int  `json:"limit"`
}

// SpamLogReport is the admin view over the attempt log.
type SpamLogReport struct {
	TotalSpamAttempts int                   `json:"totalSpamAttempts"`
	RecentSpam        []model.AttemptRecord `json:"recentSpam"`
	AllSpam           []model.AttemptRecord `json:"allSpam"`
	DailyStats        model.DailyStats      `json:"dailyStats"`
}

// ContactService runs the submission pipeline: rate limit, honeypot,
// sanitize, validate, score, daily quota, notify, log.
type ContactService struct {
	limiter  model.Limiter
	attempts model.AttemptLog
	notifier model.Notifier
	buckets  *bucketing.Manager
	scorer   *spam.Scorer

	dailyLimit int
	spamDelay  time.Duration

	logger *zap.Logger
}

func NewContactService(
	limiter model.Limiter,
	attempts model.AttemptLog,
	notifier model.Notifier,
	buckets *bucketing.Manager,
	cfg config.SpamConfig,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		limiter:    limiter,
		attempts:   attempts,
		notifier:   notifier,
		buckets:    buckets,
		scorer:     spam.NewScorer(cfg.Threshold),
		dailyLimit: cfg.DailyLimit,
		spamDelay:  cfg.Delay,
		logger:     logger,
	}
}

// Submit processes one contact-form submission. A nil return means the
// caller must see the generic success response; detected spam and bots
// deliberately fall into that case so automation cannot tell it was caught.
func (s *ContactService) Submit(ctx context.Context, sub *model.Submission, clientIP string) error {
	if !s.limiter.Allow(clientIP) {
		s.logger.Warn("Rate limit exceeded", util.String("ip", clientIP))
		return ErrRateLimited
	}

	if sub.Phone != "" {
		score := honeypotScore
		s.record(clientIP, &score, "honeypot filled", sub.Name, sub.Email, sub.Message, false)
		s.logger.Warn("Honeypot field filled, absorbing submission",
			util.String("ip", clientIP),
		)
		s.delay(ctx)
		return nil
	}

	name := util.SanitizeInput(sub.Name, maxNameLen)
	email := util.SanitizeInput(sub.Email, maxEmailLen)
	wechatID := util.SanitizeInput(sub.WechatID, maxWechatLen)
	message := util.SanitizeInput(sub.Message, maxMessageLen)

	if err := validateSubmission(name, email, message); err != nil {
		return err
	}

	score := s.scorer.Score(name, email, message)
	if s.scorer.IsSpam(score) {
		s.record(clientIP, &score, "high spam score", name, email, message, false)
		s.logger.Warn("High spam score, absorbing submission",
			util.String("ip", clientIP),
			util.Int("score", score),
		)
		s.delay(ctx)
		return nil
	}

	today := s.buckets.DateBucket(time.Now())
	if s.attempts.DailyCount(today) >= s.dailyLimit {
		s.logger.Warn("Daily email limit reached",
			util.String("ip", clientIP),
			util.Int("limit", s.dailyLimit),
		)
		return ErrDailyLimit
	}

	err := s.notifier.Send(ctx, &model.OutboundMessage{
		Name:      name,
		Email:     email,
		WechatID:  wechatID,
		Message:   message,
		ClientIP:  clientIP,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.record(clientIP, &score, "send failed", name, email, message, false)
		s.logger.Error("Mail delivery failed",
			util.String("ip", clientIP),
			util.ErrorField(err),
		)
		return err
	}

	s.record(clientIP, &score, "sent", name, email, message, true)
	s.logger.Info("Contact message sent",
		util.String("ip", clientIP),
		util.Int("score", score),
	)
	return nil
}

// LimitStatus returns the current daily count against the configured limit.
func (s *ContactService) LimitStatus() LimitStatus {
	today := s.buckets.DateBucket(time.Now())
	count := s.attempts.DailyCount(today)
	return LimitStatus{
		DailyCount:   count,
		LimitReached: count >= s.dailyLimit,
		Limit:        s.dailyLimit,
	}
}

// SpamLogReport assembles the admin view: totals, the 20 most recent
// attempts, the full list and today's breakdown.
func (s *ContactService) SpamLogReport() SpamLogReport {
	today := s.buckets.DateBucket(time.Now())
	return SpamLogReport{
		TotalSpamAttempts: s.attempts.Len(),
		RecentSpam:        s.attempts.Recent(20),
		AllSpam:           s.attempts.All(),
		DailyStats:        s.attempts.DailyStats(today, s.dailyLimit),
	}
}

// ClearSpamLog empties the attempt log, resetting today's derived counts.
func (s *ContactService) ClearSpamLog() {
	s.attempts.Clear()
	s.logger.Info("Spam log cleared")
}

// SendTestEmail dispatches a diagnostic message through the notifier. Test
// sends are not recorded and do not count against the daily quota.
func (s *ContactService) SendTestEmail(ctx context.Context) error {
	return s.notifier.SendTest(ctx)
}

func (s *ContactService) record(clientIP string, score *int, reason, name, email, message string, wasSent bool) {
	s.attempts.Append(model.AttemptRecord{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		ClientIP:  clientIP,
		SpamScore: score,
		Reason:    reason,
		Name:      name,
		Email:     email,
		Message:   message,
		WasSent:   wasSent,
	})
}

// delay holds the response for the configured artificial delay so detected
// abuse is not answered suspiciously fast.
func (s *ContactService) delay(ctx context.Context) {
	if s.spamDelay <= 0 {
		return
	}
	select {
	case <-time.After(s.spamDelay):
	case <-ctx.Done():
	}
}
