package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvFlags(t *testing.T) {
	t.Setenv("FLAG_ENFORCE_SINGLE_ACTIVE_LEASE", "true")
	t.Setenv("FLAG_TWILIO_FROM_PHONE", "+33100000000")
	t.Setenv("FLAG_CORS_HIGH_SECURITY", "not-a-bool")

	f := envFlags{}
	assert.True(t, f.Bool("enforce_single_active_lease", false))
	assert.True(t, f.Bool("cors_high_security", true), "unparsable values fall back to the default")
	assert.Equal(t, "+33100000000", f.String("twilio_from_phone", ""))
	assert.Equal(t, "fallback", f.String("sendgrid_from_email", "fallback"))
}

func TestLoadFlagsFromEnv(t *testing.T) {
	t.Setenv("FLAG_SEED_DB_WITH_TEST_DATA", "true")
	cfg := &Config{AppName: "rentals-service-test", Env: "prod"}

	loadFlags(cfg, "")

	assert.False(t, cfg.LDFlag_EnforceSingleActiveLease)
	assert.False(t, cfg.LDFlag_SendgridSandboxMode, "sandbox defaults off in production")
	assert.True(t, cfg.LDFlag_CORSHighSecurity)
	assert.True(t, cfg.LDFlag_SeedDbWithTestData)
	assert.Equal(t, "no-reply@gestion-locative.fr", cfg.LDFlag_SendgridFromEmail)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_DURATION", "90m")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BLANK", "   ")

	assert.Equal(t, 90*time.Minute, envDuration("TEST_DURATION", time.Hour))
	assert.Equal(t, time.Hour, envDuration("TEST_MISSING", time.Hour))
	assert.Equal(t, int64(42), envInt64("TEST_INT", 1))
	assert.Equal(t, "def", envOr("TEST_BLANK", "def"))
}
