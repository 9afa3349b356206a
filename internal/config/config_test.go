package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/shop-wallet/internal/config"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "0 3 * * *", cfg.AuditSchedule)
	assert.False(t, cfg.AuditOnStart)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.HMACSecret)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUDIT_SCHEDULE", "30 2 * * *")
	t.Setenv("AUDIT_ON_START", "true")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "30 2 * * *", cfg.AuditSchedule)
	assert.True(t, cfg.AuditOnStart)
	assert.Equal(t, "ops@example.com", cfg.AdminEmail)
}
