package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Mail     MailConfig
	Google   GoogleConfig
	Links    LinksConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"7002"`
	Environment     string        `envconfig:"APP_ENV" default:"development"` // development, production, test
	BaseURL         string        `envconfig:"BASE_URL" default:"http://localhost:7002"`
	FrontendURL     string        `envconfig:"FRONTEND_URL"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

func (c *ServerConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, production, test)", c.Environment)
	}
	if c.Port == "" {
		return errors.New("port cannot be empty")
	}
	if c.BaseURL == "" {
		return errors.New("base URL cannot be empty")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	return nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

type DatabaseConfig struct {
	URL string `envconfig:"DATABASE_URL" required:"true"`
}

// Validate rejects a set-but-empty DATABASE_URL, which envconfig lets through.
func (c *DatabaseConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("DATABASE_URL cannot be empty")
	}
	return nil
}

// RedisConfig is optional; an empty URL disables the redirect cache.
type RedisConfig struct {
	URL      string        `envconfig:"REDIS_URL"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"1h"`
}

// JWTConfig holds one secret per token type.
type JWTConfig struct {
	AccessSecret      string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshSecret     string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	VerifyEmailSecret string        `envconfig:"VERIFY_EMAIL_SECRET" required:"true"`
	AccessTTL         time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"`
	RefreshTTL        time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`
	VerifyEmailTTL    time.Duration `envconfig:"VERIFY_EMAIL_TTL" default:"24h"`
}

func (c *JWTConfig) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" || c.VerifyEmailSecret == "" {
		return errors.New("access, refresh and verify-email secrets cannot be empty")
	}
	if c.AccessSecret == c.RefreshSecret ||
		c.AccessSecret == c.VerifyEmailSecret ||
		c.RefreshSecret == c.VerifyEmailSecret {
		return errors.New("access, refresh and verify-email secrets must be distinct")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 || c.VerifyEmailTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}

// MailConfig configures SMTP delivery. An empty host logs links instead of sending.
type MailConfig struct {
	Host       string        `envconfig:"SMTP_HOST"`
	Port       int           `envconfig:"SMTP_PORT" default:"587"`
	Username   string        `envconfig:"EMAIL_USER"`
	Password   string        `envconfig:"EMAIL_PASS"`
	From       string        `envconfig:"MAIL_FROM"`
	RatePerSec float64       `envconfig:"MAIL_RATE_PER_SEC" default:"2"`
	Burst      int           `envconfig:"MAIL_BURST" default:"5"`
	QueueSize  int           `envconfig:"MAIL_QUEUE_SIZE" default:"100"`
	Timeout    time.Duration `envconfig:"MAIL_TIMEOUT" default:"10s"`
}

func (c *MailConfig) Validate() error {
	if c.Host == "" {
		return nil
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("EMAIL_USER and EMAIL_PASS are required when SMTP_HOST is set")
	}
	if c.RatePerSec <= 0 || c.Burst <= 0 || c.QueueSize <= 0 {
		return errors.New("mail rate, burst and queue size must be positive")
	}
	return nil
}

// Sender returns the From address, defaulting to the SMTP username.
func (c *MailConfig) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

type GoogleConfig struct {
	ClientID string        `envconfig:"GOOGLE_CLIENT_ID"`
	Timeout  time.Duration `envconfig:"GOOGLE_VERIFY_TIMEOUT" default:"10s"`
}

// LinksConfig tunes short-code generation and the redirect policy.
type LinksConfig struct {
	CodeLength    int           `envconfig:"SHORT_CODE_LENGTH" default:"7"`
	MaxAttempts   int           `envconfig:"SHORT_CODE_MAX_ATTEMPTS" default:"5"`
	VisitCap      int64         `envconfig:"VISIT_CAP" default:"0"` // 0 disables the free-tier cap
	PurgeInterval time.Duration `envconfig:"PURGE_INTERVAL" default:"1h"`
}

func (c *LinksConfig) Validate() error {
	if c.CodeLength < 7 || c.CodeLength > 9 {
		return fmt.Errorf("short code length must be between 7 and 9, got %d", c.CodeLength)
	}
	if c.MaxAttempts <= 0 {
		return errors.New("short code max attempts must be positive")
	}
	if c.VisitCap < 0 {
		return errors.New("visit cap cannot be negative")
	}
	if c.PurgeInterval <= 0 {
		return errors.New("purge interval must be positive")
	}
	return nil
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	sections := []struct {
		name     string
		target   any
		validate func() error
	}{
		{"Server", &cfg.Server, cfg.Server.Validate},
		{"Database", &cfg.Database, cfg.Database.Validate},
		{"Redis", &cfg.Redis, nil},
		{"JWT", &cfg.JWT, cfg.JWT.Validate},
		{"Mail", &cfg.Mail, cfg.Mail.Validate},
		{"Google", &cfg.Google, nil},
		{"Links", &cfg.Links, cfg.Links.Validate},
		{"Log", &cfg.Log, nil},
	}

	for _, s := range sections {
		if err := envconfig.Process("", s.target); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
		if s.validate == nil {
			continue
		}
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("invalid %s config: %w", s.name, err)
		}
	}

	return cfg, nil
}
