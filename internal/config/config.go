package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Environment string

	Server    ServerConfig
	Logging   LoggingConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	Spam      SpamConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port           int
	EnableTLS      bool
	CertFile       string
	KeyFile        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MailConfig struct {
	// ResendAPIKey may be empty; send attempts then fail with a clear
	// 500 instead of crashing at startup.
	ResendAPIKey string
	APIURL       string
	From         string
	To           string
	Timeout      time.Duration
}

type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
	Shards      int
}

type SpamConfig struct {
	Threshold   int
	Delay       time.Duration
	DailyLimit  int
	LogCapacity int
}

type AdminConfig struct {
	Password string
}

// LoadConfig reads configuration from the environment, consulting an
// optional .env file first. Malformed numeric values are startup errors.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	p := &envParser{}

	cfg := &Config{
		Environment: envString("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           p.intVal("SERVER_PORT", 8080),
			EnableTLS:      envBool("ENABLE_TLS", false),
			CertFile:       os.Getenv("TLS_CERT_FILE"),
			KeyFile:        os.Getenv("TLS_KEY_FILE"),
			ReadTimeout:    p.seconds("SERVER_READ_TIMEOUT_SECONDS", 10),
			WriteTimeout:   p.seconds("SERVER_WRITE_TIMEOUT_SECONDS", 30),
			IdleTimeout:    p.seconds("SERVER_IDLE_TIMEOUT_SECONDS", 60),
			AllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"https://*", "http://*"}),
		},
		Logging: LoggingConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
		Mail: MailConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			APIURL:       envString("RESEND_API_URL", "https://api.resend.com/emails"),
			From:         envString("CONTACT_FROM", "onboarding@resend.dev"),
			To:           os.Getenv("CONTACT_TO"),
			Timeout:      p.seconds("MAIL_TIMEOUT_SECONDS", 15),
		},
		RateLimit: RateLimitConfig{
			Window:      p.minutes("RATE_LIMIT_WINDOW_MINUTES", 15),
			MaxRequests: p.intVal("RATE_LIMIT_MAX_REQUESTS", 5),
			Shards:      p.intVal("RATE_LIMIT_SHARDS", 16),
		},
		Spam: SpamConfig{
			Threshold:   p.intVal("SPAM_SCORE_THRESHOLD", 3),
			Delay:       p.seconds("SPAM_DELAY_SECONDS", 2),
			DailyLimit:  p.intVal("DAILY_EMAIL_LIMIT", 50),
			LogCapacity: p.intVal("SPAM_LOG_CAPACITY", 100),
		},
		Admin: AdminConfig{
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}
	if cfg.Mail.To == "" {
		return nil, fmt.Errorf("CONTACT_TO is required (owner address for contact mail)")
	}
	return cfg, nil
}

// GetServerAddress returns the listen address for the HTTP server
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// envParser collects the first parse error so LoadConfig can report it once.
type envParser struct {
	err error
}

func (p *envParser) intVal(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("env %s must be an integer, got %q", key, v)
		}
		return def
	}
	return n
}

func (p *envParser) seconds(key string, def int) time.Duration {
	return time.Duration(p.intVal(key, def)) * time.Second
}

func (p *envParser) minutes(key string, def int) time.Duration {
	return time.Duration(p.intVal(key, def)) * time.Minute
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
