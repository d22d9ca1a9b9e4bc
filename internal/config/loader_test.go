package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
redis:
  addr: redis.internal:6379
jwt:
  secret: `+testSecret+`
admin:
  password: bootstrap-pass
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, testSecret, cfg.JWT.Secret)
	assert.Equal(t, "bootstrap-pass", cfg.Admin.Password)

	// Unset keys fall back to the defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "secret", cfg.Vault.Mount)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
redis:
  addr: from-file:6379
jwt:
  secret: `+testSecret+`
admin:
  password: bootstrap-pass
`)
	t.Setenv("PIDS_REDIS_ADDR", "from-env:6379")
	t.Setenv("PIDS_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env:6379", cfg.Redis.Addr)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	path := writeConfigFile(t, `
jwt:
  secret: too-short
admin:
  password: bootstrap-pass
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestLoadRequiresAdminPassword(t *testing.T) {
	path := writeConfigFile(t, `
jwt:
  secret: `+testSecret+`
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin.password")
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSMTPEnabledRequiresSender(t *testing.T) {
	path := writeConfigFile(t, `
jwt:
  secret: `+testSecret+`
admin:
  password: bootstrap-pass
smtp:
  host: mail.internal
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.sender")
}
