// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// ChannelConfig provides settings for the WhatsApp Cloud API integration.
type ChannelConfig interface {
	GetChannelAPIURL() string
	GetWebhookVerifyToken() string
}

// AIConfig provides settings for the text-generation service.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetAITimeout() time.Duration
	GetAIMaxOutputTokens() int32
	IsAIEnabled() bool
}

// TriggerConfig provides the escalation trigger phrase list.
type TriggerConfig interface {
	GetEscalationTriggers() []string
}

// EmailConfig provides settings for escalation notification emails.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetEmailNotifyAddress() string
	IsEmailEnabled() bool
}

// SchedulerConfig provides settings for the asynq delivery queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// SeedConfig provides the shared channel credentials used to seed the demo
// business on startup.
type SeedConfig interface {
	GetSeedPhoneNumberID() string
	GetSeedAccessToken() string
	GetSeedWhatsAppNumber() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTAccessSecret string

	CORSAllowAll bool
	CORSOrigins  []string

	ChannelAPIURL      string
	WebhookVerifyToken string

	GeminiAPIKey      string
	GeminiModel       string
	AITimeout         time.Duration
	AIMaxOutputTokens int32

	EscalationTriggers []string

	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	EmailFromName      string
	EmailFromAddress   string
	EmailNotifyAddress string

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	SeedPhoneNumberID  string
	SeedAccessToken    string
	SeedWhatsAppNumber string
}

// defaultEscalationTriggers is the matching data used when ESCALATION_TRIGGERS
// is not set. The matching algorithm itself lives in internal/assistant.
var defaultEscalationTriggers = []string{
	"speak to a person",
	"speak to someone",
	"human",
	"agent",
	"manager",
	"complaint",
	"refund",
	"not working",
	"problem",
	"urgent",
	"asap",
	"emergency",
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		CORSAllowAll: getBool("CORS_ALLOW_ALL", true),
		CORSOrigins:  splitList(os.Getenv("CORS_ORIGINS")),

		ChannelAPIURL:      getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v19.0"),
		WebhookVerifyToken: os.Getenv("VERIFY_TOKEN"),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AITimeout:         getDuration("AI_TIMEOUT", 30*time.Second),
		AIMaxOutputTokens: int32(getInt("AI_MAX_OUTPUT_TOKENS", 500)),

		EscalationTriggers: splitList(os.Getenv("ESCALATION_TRIGGERS")),

		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           getInt("SMTP_PORT", 587),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "Replify"),
		EmailFromAddress:   os.Getenv("EMAIL_FROM_ADDRESS"),
		EmailNotifyAddress: os.Getenv("ESCALATION_NOTIFY_EMAIL"),

		RedisURL:         os.Getenv("REDIS_URL"),
		RedisTLSInsecure: getBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getInt("ASYNQ_CONCURRENCY", 10),

		SeedPhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		SeedAccessToken:    os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		SeedWhatsAppNumber: os.Getenv("WHATSAPP_NUMBER"),
	}

	if len(cfg.EscalationTriggers) == 0 {
		cfg.EscalationTriggers = defaultEscalationTriggers
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// =============================================================================
// Interface implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetChannelAPIURL() string      { return c.ChannelAPIURL }
func (c *Config) GetWebhookVerifyToken() string { return c.WebhookVerifyToken }

func (c *Config) GetGeminiAPIKey() string         { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string          { return c.GeminiModel }
func (c *Config) GetAITimeout() time.Duration     { return c.AITimeout }
func (c *Config) GetAIMaxOutputTokens() int32     { return c.AIMaxOutputTokens }
func (c *Config) IsAIEnabled() bool               { return c.GeminiAPIKey != "" }
func (c *Config) GetEscalationTriggers() []string { return c.EscalationTriggers }

func (c *Config) GetSMTPHost() string           { return c.SMTPHost }
func (c *Config) GetSMTPPort() int              { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string       { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string       { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string      { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string   { return c.EmailFromAddress }
func (c *Config) GetEmailNotifyAddress() string { return c.EmailNotifyAddress }
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.EmailFromAddress != "" && c.EmailNotifyAddress != ""
}

func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

func (c *Config) GetSeedPhoneNumberID() string  { return c.SeedPhoneNumberID }
func (c *Config) GetSeedAccessToken() string    { return c.SeedAccessToken }
func (c *Config) GetSeedWhatsAppNumber() string { return c.SeedWhatsAppNumber }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
