// Package config loads all runtime configuration from the environment into
// an explicit struct. Nothing reads the environment after Load returns, so
// services constructed from a Config are deterministic under test.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// SMTPConfig carries the outbound mail settings. The mailer is a no-op
// unless Host, Username and Password are all set.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Auth      bool
	StartTLS  bool
}

// Configured reports whether enough is set to actually send mail.
func (s SMTPConfig) Configured() bool {
	return strings.TrimSpace(s.Host) != "" &&
		strings.TrimSpace(s.Username) != "" &&
		strings.TrimSpace(s.Password) != ""
}

// Config holds every runtime setting of the portal.
type Config struct {
	Env  string
	Port string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
	SessionTTL   time.Duration

	TermsOfServiceURL string
	PrivacyPolicyURL  string

	SMTP            SMTPConfig
	SlackWebhookURL string
	RabbitURL       string

	MigrateOnBoot bool
}

// Load reads the environment and returns a fully populated Config. Only the
// database settings are hard requirements; everything else has a default or
// degrades the related feature when absent.
func Load() Config {
	return Config{
		Env:  envStr("APP_ENV", "dev"),
		Port: envStr("APP_PORT", "8080"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 30),
		BcryptCost:   envInt("BCRYPT_COST", 12),
		SessionTTL:   envDur("SESSION_TTL", 24*time.Hour),

		TermsOfServiceURL: strings.TrimSpace(os.Getenv("TERMS_OF_SERVICE_URL")),
		PrivacyPolicyURL:  strings.TrimSpace(os.Getenv("PRIVACY_POLICY_URL")),

		SMTP: SMTPConfig{
			Host:      os.Getenv("SMTP_HOST"),
			Port:      envInt("SMTP_PORT", 587),
			Username:  os.Getenv("SMTP_USERNAME"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromEmail: envStr("FROM_EMAIL", "noreply@coworkingspace.local"),
			FromName:  envStr("FROM_NAME", "Coworking Space Portal"),
			Auth:      envBool("SMTP_AUTH", true),
			StartTLS:  envBool("SMTP_STARTTLS", true),
		},
		SlackWebhookURL: strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		RabbitURL:       envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),

		MigrateOnBoot: envBool("MIGRATE_ON_BOOT", false),
	}
}

// HasTermsOfServiceURL gates the registration terms-agreement requirement.
func (c Config) HasTermsOfServiceURL() bool { return c.TermsOfServiceURL != "" }

func (c Config) HasPrivacyPolicyURL() bool { return c.PrivacyPolicyURL != "" }

// must retrieves a required environment variable. Load runs once at startup
// before any request handling, so exiting here is a clean refusal to boot
// misconfigured.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
