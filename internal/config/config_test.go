package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, BackendMemory, cfg.StorageBackend)
		assert.Equal(t, 5, cfg.Security.ResetRateLimit)
		assert.Equal(t, 15*time.Minute, cfg.Security.ResetRateWindow)
		assert.Equal(t, 24*time.Hour, cfg.Security.TokenRetention)
		assert.Equal(t, 30*time.Minute, cfg.Security.PasswordResetTokenExpiry)
	})

	t.Run("NegativeRateLimitFallsBack", func(t *testing.T) {
		t.Setenv("RESET_RATE_LIMIT", "-3")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, defaultResetRateLimit, cfg.Security.ResetRateLimit)
	})

	t.Run("ZeroRateLimitKept", func(t *testing.T) {
		t.Setenv("RESET_RATE_LIMIT", "0")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Security.ResetRateLimit)
	})

	t.Run("NegativeRetentionFallsBack", func(t *testing.T) {
		t.Setenv("TOKEN_RETENTION", "-1h")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, defaultTokenRetention, cfg.Security.TokenRetention)
	})

	t.Run("MinPasswordLengthFloor", func(t *testing.T) {
		t.Setenv("MIN_PASSWORD_LENGTH", "4")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Security.MinPasswordLength)
	})

	t.Run("ErrorUnknownBackend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "cassandra")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
