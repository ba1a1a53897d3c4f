package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPortfolioName, cfg.Portfolio.Name)
	assert.Equal(t, "data/portfolio.quest", cfg.Portfolio.Path)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "yahoo", cfg.Quotes.Provider)
	assert.Equal(t, 10*time.Second, cfg.QuoteTimeout())
	assert.Equal(t, 5*time.Minute, cfg.AutosaveInterval())
	assert.Equal(t, 15*time.Minute, cfg.AutorefreshInterval())
	assert.True(t, cfg.AutosaveEnabled())
	assert.True(t, cfg.AutorefreshEnabled())
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
portfolio:
  name: Long Term
  path: /tmp/long.db
storage:
  driver: sqlite
quotes:
  provider: moex
  concurrency: 8
schedule:
  autosave_enabled: false
  autorefresh_interval: 1h
`))
	require.NoError(t, err)

	assert.Equal(t, "Long Term", cfg.Portfolio.Name)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "moex", cfg.Quotes.Provider)
	assert.Equal(t, 8, cfg.Quotes.Concurrency)
	assert.False(t, cfg.AutosaveEnabled())
	assert.Equal(t, time.Hour, cfg.AutorefreshInterval())
}

func TestLoad_EnvSecrets(t *testing.T) {
	t.Setenv("QUEST_TINKOFF_TOKEN", "t-token")
	cfg, err := Load(writeConfig(t, "quotes:\n  provider: tinkoff\n"))
	require.NoError(t, err)
	assert.Equal(t, "t-token", cfg.Tinkoff.Token)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown driver", body: "storage:\n  driver: mongo\n"},
		{name: "unknown provider", body: "quotes:\n  provider: bloomberg\n"},
		{name: "tinkoff without token", body: "quotes:\n  provider: tinkoff\n"},
		{name: "bad interval", body: "schedule:\n  autosave_interval: soon\n"},
		{name: "sub-second interval", body: "schedule:\n  autorefresh_interval: 10ms\n"},
		{name: "telegram without token", body: "telegram:\n  enabled: true\n  chat_id: 1\n"},
		{name: "telegram without chat", body: "telegram:\n  enabled: true\n  bot_token: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("QUEST_TINKOFF_TOKEN", "")
			t.Setenv("QUEST_TELEGRAM_BOT_TOKEN", "")
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPortfolioName, cfg.Portfolio.Name)

	_, err = LoadOrDefault(writeConfig(t, "storage: [\n"))
	assert.Error(t, err)
}
