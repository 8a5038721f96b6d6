package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "portal")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "portal")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.AccessTTLMin)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.MigrateOnBoot)

	// SMTP defaults mirror a typical submission setup.
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.Auth)
	assert.True(t, cfg.SMTP.StartTLS)
	assert.Equal(t, "noreply@coworkingspace.local", cfg.SMTP.FromEmail)
	assert.False(t, cfg.SMTP.Configured())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SMTP_STARTTLS", "false")
	t.Setenv("MIGRATE_ON_BOOT", "true")

	cfg := Load()
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.SMTP.StartTLS)
	assert.True(t, cfg.MigrateOnBoot)
}

func TestSMTPConfigured(t *testing.T) {
	c := SMTPConfig{Host: "smtp.example.com", Username: "u", Password: "p"}
	assert.True(t, c.Configured())

	c.Password = ""
	assert.False(t, c.Configured())
}

func TestHasDocumentURLs(t *testing.T) {
	setRequired(t)
	cfg := Load()
	require.False(t, cfg.HasTermsOfServiceURL())

	t.Setenv("TERMS_OF_SERVICE_URL", "https://example.com/terms")
	t.Setenv("PRIVACY_POLICY_URL", "https://example.com/privacy")
	cfg = Load()
	assert.True(t, cfg.HasTermsOfServiceURL())
	assert.True(t, cfg.HasPrivacyPolicyURL())
}

func TestLoadRateLimitDefaults(t *testing.T) {
	rl := LoadRateLimitConfig()
	assert.True(t, rl.Enabled)
	assert.Equal(t, 10, rl.Capacity)
	assert.Equal(t, 6*time.Second, rl.RefillInterval)
	assert.GreaterOrEqual(t, rl.TTL, 5*rl.RefillInterval)
}

func TestLoadRateLimitClampsBadValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 5*rl.RefillInterval, rl.TTL)
}
