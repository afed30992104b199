package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"contact-service/internal/bucketing"
	"contact-service/internal/config"
	"contact-service/internal/model"
	"contact-service/internal/store"
)

type fakeLimiter struct {
	allow bool
}

func (f *fakeLimiter) Allow(string) bool { return f.allow }

type fakeNotifier struct {
	sends     []model.OutboundMessage
	testSends int
	err       error
}

func (f *fakeNotifier) Send(_ context.Context, msg *model.OutboundMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sends = append(f.sends, *msg)
	return nil
}

func (f *fakeNotifier) SendTest(context.Context) error {
	f.testSends++
	return f.err
}

type fixture struct {
	svc      *ContactService
	attempts *store.AttemptLog
	notifier *fakeNotifier
	limiter  *fakeLimiter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		attempts: store.NewAttemptLog(100),
		notifier: &fakeNotifier{},
		limiter:  &fakeLimiter{allow: true},
	}
	cfg := config.SpamConfig{
		Threshold:   3,
		Delay:       0, // tests must not sleep
		DailyLimit:  50,
		LogCapacity: 100,
	}
	f.svc = NewContactService(f.limiter, f.attempts, f.notifier, bucketing.NewManager(4), cfg, zap.NewNop())
	return f
}

func validSubmission() *model.Submission {
	return &model.Submission{
		Name:    "Alice",
		Email:   "alice@example.com",
		Message: "I have a question about your research.",
	}
}

func TestSubmitSuccess(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Submit(context.Background(), validSubmission(), "203.0.113.7")
	require.NoError(t, err)

	require.Len(t, f.notifier.sends, 1)
	sent := f.notifier.sends[0]
	assert.Equal(t, "Alice", sent.Name)
	assert.Equal(t, "203.0.113.7", sent.ClientIP)

	all := f.attempts.All()
	require.Len(t, all, 1)
	assert.True(t, all[0].WasSent)
	assert.Equal(t, "sent", all[0].Reason)
	require.NotNil(t, all[0].SpamScore)
	assert.Equal(t, 0, *all[0].SpamScore)
}

func TestSubmitSanitizesBeforeSending(t *testing.T) {
	f := newFixture(t)

	sub := validSubmission()
	sub.Name = "<b>Alice</b>"
	sub.Message = "hello <script>alert(1)</script> there"

	require.NoError(t, f.svc.Submit(context.Background(), sub, "203.0.113.7"))

	require.Len(t, f.notifier.sends, 1)
	assert.Equal(t, "Alice", f.notifier.sends[0].Name)
	assert.NotContains(t, f.notifier.sends[0].Message, "<script>")
}

func TestSubmitRateLimited(t *testing.T) {
	f := newFixture(t)
	f.limiter.allow = false

	err := f.svc.Submit(context.Background(), validSubmission(), "203.0.113.7")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, f.notifier.sends)
	assert.Equal(t, 0, f.attempts.Len())
}

func TestSubmitHoneypotIsSilentlyAbsorbed(t *testing.T) {
	f := newFixture(t)

	sub := validSubmission()
	sub.Phone = "555-0100"

	err := f.svc.Submit(context.Background(), sub, "203.0.113.7")
	require.NoError(t, err, "a bot must see success")
	assert.Empty(t, f.notifier.sends, "honeypot submissions never reach the notifier")

	all := f.attempts.All()
	require.Len(t, all, 1)
	assert.Equal(t, "honeypot filled", all[0].Reason)
	assert.False(t, all[0].WasSent)
	require.NotNil(t, all[0].SpamScore)
	assert.Equal(t, honeypotScore, *all[0].SpamScore)
}

func TestSubmitSpamIsSilentlyAbsorbed(t *testing.T) {
	f := newFixture(t)

	sub := validSubmission()
	sub.Message = "Get a bitcoin loan today"

	err := f.svc.Submit(context.Background(), sub, "203.0.113.7")
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sends)

	all := f.attempts.All()
	require.Len(t, all, 1)
	assert.Equal(t, "high spam score", all[0].Reason)
	assert.False(t, all[0].WasSent)
	require.NotNil(t, all[0].SpamScore)
	assert.GreaterOrEqual(t, *all[0].SpamScore, 4)
}

func TestSubmitInvalidEmailFailsBeforeScoring(t *testing.T) {
	f := newFixture(t)

	sub := validSubmission()
	sub.Email = "not-an-email"
	// A message that would otherwise be scored as spam
	sub.Message = "bitcoin casino loan"

	err := f.svc.Submit(context.Background(), sub, "203.0.113.7")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.notifier.sends)
	assert.Equal(t, 0, f.attempts.Len(), "validation failures are rejected before the scoring stage")
}

func TestSubmitMissingFields(t *testing.T) {
	f := newFixture(t)

	sub := validSubmission()
	sub.Message = "   "

	var validationErr *ValidationError
	err := f.svc.Submit(context.Background(), sub, "203.0.113.7")
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmitDailyLimit(t *testing.T) {
	f := newFixture(t)

	now := time.Now().UTC()
	for i := 0; i < 50; i++ {
		f.attempts.Append(model.AttemptRecord{Timestamp: now, WasSent: true, Reason: "sent"})
	}

	err := f.svc.Submit(context.Background(), validSubmission(), "203.0.113.7")
	assert.ErrorIs(t, err, ErrDailyLimit)
	assert.Empty(t, f.notifier.sends)
}

func TestSubmitNotifierFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("provider down")

	err := f.svc.Submit(context.Background(), validSubmission(), "203.0.113.7")
	require.Error(t, err)

	// Recorded, but the daily count must not count failed deliveries
	all := f.attempts.All()
	require.Len(t, all, 1)
	assert.False(t, all[0].WasSent)
	assert.Equal(t, "send failed", all[0].Reason)
	assert.Equal(t, 0, f.svc.LimitStatus().DailyCount)
}

func TestLimitStatus(t *testing.T) {
	f := newFixture(t)

	status := f.svc.LimitStatus()
	assert.Equal(t, 0, status.DailyCount)
	assert.False(t, status.LimitReached)
	assert.Equal(t, 50, status.Limit)

	now := time.Now().UTC()
	for i := 0; i < 50; i++ {
		f.attempts.Append(model.AttemptRecord{Timestamp: now, WasSent: true})
	}

	status = f.svc.LimitStatus()
	assert.Equal(t, 50, status.DailyCount)
	assert.True(t, status.LimitReached)
}

func TestSpamLogReport(t *testing.T) {
	f := newFixture(t)

	sub := validSubmission()
	sub.Message = "bitcoin casino"
	require.NoError(t, f.svc.Submit(context.Background(), sub, "203.0.113.7"))
	require.NoError(t, f.svc.Submit(context.Background(), validSubmission(), "203.0.113.8"))

	report := f.svc.SpamLogReport()
	assert.Equal(t, 2, report.TotalSpamAttempts)
	assert.Len(t, report.RecentSpam, 2)
	assert.Len(t, report.AllSpam, 2)
	assert.Equal(t, 1, report.DailyStats.SentToday)
	assert.Equal(t, 1, report.DailyStats.FilteredToday)

	f.svc.ClearSpamLog()
	assert.Equal(t, 0, f.svc.SpamLogReport().TotalSpamAttempts)
}

func TestSendTestEmailDoesNotTouchQuota(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.SendTestEmail(context.Background()))
	assert.Equal(t, 1, f.notifier.testSends)
	assert.Equal(t, 0, f.attempts.Len())
	assert.Equal(t, 0, f.svc.LimitStatus().DailyCount)
}
