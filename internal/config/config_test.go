package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("ASYNC_DELAY", "100ms")
	t.Setenv("PASSWORD_STORAGE", "plain")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.ServerPort)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 100*time.Millisecond, cfg.AsyncDelay)
	assert.Equal(t, "plain", cfg.PasswordStorage)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PORT", "8080")
	t.Setenv("TOKEN_TTL", "forever")
	_, err = Load()
	assert.Error(t, err)
}
