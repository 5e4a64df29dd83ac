package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesSandboxDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "")
	t.Setenv("UPLOAD_DIR", "")
	t.Setenv("PUBLIC_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MPESA_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Production())
	assert.Equal(t, "https://openapi.m-pesa.com/sandbox", cfg.Mpesa.BaseURL)
	assert.Equal(t, "dev-only-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "http://localhost:8080", cfg.Server.PublicURL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
}

func TestLoadFailsFastInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PUBLIC_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MPESA_API_KEY", "")
	t.Setenv("MPESA_API_SECRET", "")
	t.Setenv("TIGOPESA_USERNAME", "")
	t.Setenv("TIGOPESA_PASSWORD", "")
	t.Setenv("AIRTEL_CLIENT_ID", "")
	t.Setenv("AIRTEL_CLIENT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "PUBLIC_URL")
	assert.Contains(t, err.Error(), "MPESA_API_KEY")
}

func TestLoadProductionWithFullCredentials(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PUBLIC_URL", "https://giving.example.org/")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("MPESA_BASE_URL", "https://openapi.m-pesa.com")
	t.Setenv("MPESA_API_KEY", "key")
	t.Setenv("MPESA_API_SECRET", "secret")
	t.Setenv("TIGOPESA_USERNAME", "user")
	t.Setenv("TIGOPESA_PASSWORD", "pass")
	t.Setenv("AIRTEL_CLIENT_ID", "id")
	t.Setenv("AIRTEL_CLIENT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	// production never silently falls back to sandbox endpoints
	assert.Empty(t, cfg.TigoPesa.BaseURL)
	assert.Equal(t, "prod-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "https://giving.example.org", cfg.Server.PublicURL)
}
