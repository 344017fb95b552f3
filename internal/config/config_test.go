// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://cafeteria@localhost/cafeteria")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 168*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 64, cfg.Realtime.SendBuffer)
	assert.Equal(t, 54*time.Second, cfg.Realtime.PingPeriod())
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.Assistant.Enabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadTokenExpiresEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_EXPIRES", "24h")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.True(t, cfg.Assistant.Enabled())
}

func TestLoadTokenExpiresInDays(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_EXPIRES", "7d")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 168*time.Hour, cfg.JWT.AccessTokenExpire)

	t.Setenv("TOKEN_EXPIRES", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"0.5d", 12 * time.Hour},
		{"90m", 90 * time.Minute},
		{"168h", 168 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDuration("-1d")
	assert.Error(t, err)
}

func TestLoadFileThenEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  port: 7000\nstorage:\n  bucket: menu-images\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Storage.Enabled())
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
}

func TestLoadMissingDatabase(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
