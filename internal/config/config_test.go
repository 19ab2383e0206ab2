package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "data/taskdesk.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Auth.SessionTTLDays)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Auth.CookieSecure)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdesk.yml")
	body := `
server:
  addr: ":9090"
database:
  path: "/var/lib/taskdesk/app.db"
auth:
  session_ttl_days: 30
  cookie_secure: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/var/lib/taskdesk/app.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.Auth.SessionTTLDays)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, 12, cfg.Auth.BcryptCost, "unset values keep defaults")
}

func TestLoad_BadYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKDESK_ADDR", ":7070")
	t.Setenv("TASKDESK_DB_PATH", "/tmp/override.db")
	t.Setenv("TASKDESK_SESSION_TTL_DAYS", "14")
	t.Setenv("TASKDESK_BCRYPT_COST", "10")
	t.Setenv("TASKDESK_COOKIE_SECURE", "yes")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, 14, cfg.Auth.SessionTTLDays)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.CookieSecure)
}

func TestLoad_BadEnvValuesIgnored(t *testing.T) {
	t.Setenv("TASKDESK_SESSION_TTL_DAYS", "not-a-number")
	t.Setenv("TASKDESK_COOKIE_SECURE", "maybe")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Auth.SessionTTLDays)
	assert.False(t, cfg.Auth.CookieSecure)
}
