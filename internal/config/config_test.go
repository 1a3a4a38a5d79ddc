package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/spamwatch/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  json: false
telegram:
  token: "123456789:test-token"
  monitored_chats: [-1001234567890]
  admin_ids: [111, 222]
  log_channel_id: -1009876543210
  report_channel_id: -1005555555555
gemini:
  api_key: test-key
database:
  path: /tmp/test.db
media:
  dir: /tmp/media
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Logger.JSON)
	assert.Equal(t, []int64{-1001234567890}, cfg.Telegram.MonitoredChats)
	assert.Equal(t, []int64{111, 222}, cfg.Telegram.AdminIDs)
	assert.Equal(t, int64(-1009876543210), cfg.Telegram.LogChannelID)
	assert.Equal(t, int64(-1005555555555), cfg.Telegram.ReportChannelID)

	// Defaults fill what the file omits.
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.ModelName)
	assert.Equal(t, 2, cfg.Gemini.MaxRetries)
	assert.Equal(t, 30, cfg.Media.RetentionDays)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.MediaCleanup)
}

func TestLoadConfigMissingToken(t *testing.T) {
	path := writeConfig(t, `
telegram:
  monitored_chats: [-1001234567890]
  log_channel_id: -1009876543210
gemini:
  api_key: test-key
`)

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRequiresMonitoredChats(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456789:test-token"
  log_channel_id: -1009876543210
gemini:
  api_key: test-key
`)

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigBadLogLevel(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: loud
telegram:
  token: "123456789:test-token"
  monitored_chats: [-1001234567890]
  log_channel_id: -1009876543210
gemini:
  api_key: test-key
`)

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}
