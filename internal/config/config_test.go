package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "MIGRATIONS_PATH", "AUTO_MIGRATE", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	assert.Equal(t, 8080, ServerPort())
	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, "migrations", MigrationsPath())
	assert.False(t, AutoMigrate())
	assert.Equal(t, 100.0, RateLimitRPS())
	assert.Equal(t, 20, RateLimitBurst())
	assert.Equal(t, zapcore.InfoLevel, LogLevel())
}

func TestOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("LOG_LEVEL", "debug")

	assert.Equal(t, ":9090", ServerAddr())
	assert.True(t, AutoMigrate())
	assert.Equal(t, 2.5, RateLimitRPS())
	assert.Equal(t, 5, RateLimitBurst())
	assert.Equal(t, zapcore.DebugLevel, LogLevel())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "http")
	t.Setenv("AUTO_MIGRATE", "sometimes")
	t.Setenv("RATE_LIMIT_RPS", "-1")
	t.Setenv("RATE_LIMIT_BURST", "0")
	t.Setenv("LOG_LEVEL", "loud")

	assert.Equal(t, 8080, ServerPort())
	assert.False(t, AutoMigrate())
	assert.Equal(t, 100.0, RateLimitRPS())
	assert.Equal(t, 20, RateLimitBurst())
	assert.Equal(t, zapcore.InfoLevel, LogLevel())
}

func TestLoadReadsEnvAndSecret(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PATRON_TEST_PORT_KEY=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("PATRON_TEST_SECRET_KEY=from-secret\n"), 0o600))

	t.Setenv("PATRON_ENV", envFile)
	t.Setenv("PATRON_TEST_PORT_KEY", "")
	t.Setenv("PATRON_TEST_SECRET_KEY", "")
	// godotenv does not override variables that are already set, even to "".
	os.Unsetenv("PATRON_TEST_PORT_KEY")
	os.Unsetenv("PATRON_TEST_SECRET_KEY")

	require.NoError(t, Load())
	assert.Equal(t, "from-env", os.Getenv("PATRON_TEST_PORT_KEY"))
	assert.Equal(t, "from-secret", os.Getenv("PATRON_TEST_SECRET_KEY"))
}
