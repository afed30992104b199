package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"contact-service/internal/config"
	"contact-service/internal/model"
	"contact-service/internal/util"
)

// ErrNotConfigured is returned when no provider API key is present. It maps
// to a clear 500 rather than a crash.
var ErrNotConfigured = errors.New("mail provider API key is not configured")

// ProviderError is a non-success response from the mail provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mail provider returned status %d: %s", e.StatusCode, e.Body)
}

// ResendClient delivers messages through the Resend transactional-email API.
// At-most-once: a failed call is surfaced, never retried or queued.
type ResendClient struct {
	apiKey string
	apiURL string
	from   string
	to     string
	client *http.Client
	logger *zap.Logger
}

func NewResendClient(cfg config.MailConfig, logger *zap.Logger) *ResendClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ResendClient{
		apiKey: cfg.ResendAPIKey,
		apiURL: cfg.APIURL,
		from:   cfg.From,
		to:     cfg.To,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type emailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one accepted contact message to the site owner.
func (c *ResendClient) Send(ctx context.Context, msg *model.OutboundMessage) error {
	payload := emailPayload{
		From:    c.from,
		To:      []string{c.to},
		Subject: fmt.Sprintf("New question from %s", msg.Name),
		HTML:    renderHTML(msg),
	}
	return c.post(ctx, payload)
}

// SendTest delivers a diagnostic message so the operator can verify the
// provider credentials end to end.
func (c *ResendClient) SendTest(ctx context.Context) error {
	payload := emailPayload{
		From:    c.from,
		To:      []string{c.to},
		Subject: "Contact service test email",
		HTML:    "<h2>This is a test email</h2><p>If you receive this, the email service is working.</p>",
	}
	return c.post(ctx, payload)
}

func (c *ResendClient) post(ctx context.Context, payload emailPayload) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call mail provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Mail provider rejected message",
			util.Int("status", resp.StatusCode),
			util.String("body", string(detail)),
		)
		return &ProviderError{StatusCode: resp.StatusCode, Body: string(detail)}
	}

	c.logger.Info("Email dispatched",
		util.String("to", c.to),
		util.Int("status", resp.StatusCode),
	)
	return nil
}

func renderHTML(msg *model.OutboundMessage) string {
	var b bytes.Buffer
	b.WriteString("<h2>New question from the site</h2>")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(msg.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", html.EscapeString(msg.Email))
	if msg.WechatID != "" {
		fmt.Fprintf(&b, "<p><strong>WeChat ID:</strong> %s</p>", html.EscapeString(msg.WechatID))
	}
	b.WriteString("<p><strong>Question:</strong></p>")
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(msg.Message))
	b.WriteString("<hr>")
	fmt.Fprintf(&b, "<p><small>Submitted from IP: %s at %s</small></p>",
		html.EscapeString(msg.ClientIP), msg.Timestamp.UTC().Format(time.RFC3339))
	return b.String()
}
