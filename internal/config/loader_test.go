package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tszkin/gabbot/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
telegram:
  token: "test-token"
ai:
  api_key: "test-key"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Telegram.Token)
	assert.Equal(t, config.DefaultAIModel, cfg.AI.Model)
	assert.Equal(t, config.DefaultDailyLimit, cfg.Quota.DailyLimit)
	assert.Equal(t, 8, cfg.Quota.TimezoneOffset)
	assert.True(t, cfg.Quota.FailOpen)
	assert.Equal(t, config.DefaultMessages.Waiting, cfg.Messages.Waiting)
	assert.Equal(t, config.DefaultMessages.QuotaExhausted, cfg.Messages.QuotaExhausted)
	assert.NotEmpty(t, cfg.Messages.Help)
	assert.Contains(t, cfg.Scheduler.Tasks, "sql_maintenance")
	assert.Contains(t, cfg.Scheduler.Tasks, "usage_prune")
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
telegram:
  token: "test-token"
ai:
  api_key: "test-key"
  timeout: 30s
quota:
  daily_limit: 5
  timezone_offset: 0
messages:
  waiting: "hold on"
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Quota.DailyLimit)
	assert.Equal(t, 0, cfg.Quota.TimezoneOffset)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "hold on", cfg.Messages.Waiting)
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "env-token")
	t.Setenv("BOT_AI_API_KEY", "env-key")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing token", `
ai:
  api_key: "k"
`},
		{"missing api key", `
telegram:
  token: "t"
`},
		{"daily limit below minimum", minimalConfig + `
quota:
  daily_limit: 0
`},
		{"bad log level", minimalConfig + `
log:
  level: loud
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}
