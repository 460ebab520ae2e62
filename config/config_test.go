package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningos/quota-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 4, cfg.Policy.MinWeeklyRest)
	assert.Equal(t, 1, cfg.Policy.MaxSeniorityLeave)
	assert.True(t, cfg.Policy.HourQuotaTolerance.IsZero())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MIN_RH_PER_PERIOD", "5")
	t.Setenv("HOUR_QUOTA_TOLERANCE", "2.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.Policy.MinWeeklyRest)
	assert.Equal(t, "2.5", cfg.Policy.HourQuotaTolerance.String())
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadLevel(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LOG_LEVEL", "shouty")

	_, err := config.Load()
	assert.Error(t, err)
}
