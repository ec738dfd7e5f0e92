package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PAGEN_DB_PATH", "PAGEN_USER_ID", "PAGEN_LOG_LEVEL", "PAGEN_LOG_FORMAT",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "PAGEN_OPENAI_MODEL", "PAGEN_OPENAI_TIMEOUT",
		"PAGEN_REDIS_ADDR", "PAGEN_REDIS_PASSWORD", "PAGEN_REDIS_DB", "PAGEN_REDIS_TTL", "PAGEN_WEB_PORT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath(), cfg.DBPath)
	assert.Equal(t, "local", cfg.UserID)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.False(t, cfg.OpenAI.Enabled())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 8080, cfg.Web.Port)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
db_path: /tmp/pagen-test/crm.db
user_id: harper
log:
  level: debug
openai:
  model: gpt-4o
  timeout: 5s
redis:
  addr: localhost:6379
  ttl: 1h
web:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("PAGEN_USER_ID", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pagen-test/crm.db", cfg.DBPath)
	assert.Equal(t, "from-env", cfg.UserID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 5*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.True(t, cfg.OpenAI.Enabled())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 9090, cfg.Web.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("web:\n  port: 70000\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "web.port")
}

func TestValidate(t *testing.T) {
	base := Config{
		UserID: "u",
		OpenAI: OpenAIConfig{Model: "m", Timeout: time.Second},
		Redis:  RedisConfig{TTL: time.Hour},
		Web:    WebConfig{Port: 8080},
	}
	require.NoError(t, base.Validate())

	noUser := base
	noUser.UserID = ""
	assert.Error(t, noUser.Validate())

	noModel := base
	noModel.OpenAI = OpenAIConfig{APIKey: "k", Timeout: time.Second}
	assert.Error(t, noModel.Validate())

	badTTL := base
	badTTL.Redis = RedisConfig{Addr: "localhost:6379"}
	assert.Error(t, badTTL.Validate())
}
