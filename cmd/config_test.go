package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return v
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"FEED_URLS", "FEEDS_OPML_FILE", "INSTRUCTIONS",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_API_URL",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(env, "")
	}
}

func TestLoadPipelineConfig_Defaults(t *testing.T) {
	clearEnv(t)
	v := newTestViper(t, "")
	v.Set("instructions_file", filepath.Join(t.TempDir(), "missing"))

	cfg, err := loadPipelineConfig(v)
	require.NoError(t, err)

	assert.Empty(t, cfg.Feeds.URLs)
	assert.Equal(t, 24*time.Hour, cfg.Feeds.Window)
	assert.Equal(t, 3, cfg.Feeds.UTCOffsetHours)
	assert.Equal(t, 30*time.Second, cfg.Feeds.Timeout)
	assert.Empty(t, cfg.Instructions)
	assert.Equal(t, "gpt-4o-mini", cfg.Completion.Model)
	assert.Equal(t, "https://api.openai.com/v1/responses", cfg.Completion.APIUrl)
	assert.Nil(t, cfg.Completion.Temperature)
	assert.Nil(t, cfg.Completion.TopP)
	assert.Equal(t, 500*time.Millisecond, cfg.Telegram.SendInterval)
	assert.Equal(t, 4000, cfg.Telegram.MaxMessageLength)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadPipelineConfig_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEED_URLS", " https://a.example/rss, ,https://b.example/rss ")
	t.Setenv("INSTRUCTIONS", "Summarize in Russian")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100")

	cfg, err := loadPipelineConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/rss"}, cfg.Feeds.URLs)
	assert.Equal(t, "Summarize in Russian", cfg.Instructions)
	assert.Equal(t, "sk-env", cfg.Completion.APIKey)
	assert.Equal(t, "gpt-env", cfg.Completion.Model)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "-100", cfg.Telegram.ChatID)
}

func TestLoadPipelineConfig_File(t *testing.T) {
	clearEnv(t)
	instructions := filepath.Join(t.TempDir(), ".instructions")
	require.NoError(t, os.WriteFile(instructions, []byte("\nBe concise.\n"), 0o644))

	v := newTestViper(t, `
feeds:
  urls:
    - https://a.example/rss
    - https://b.example/rss
  window: 12h
completion:
  temperature: 0.2
  extra:
    max_output_tokens: 800
telegram:
  send_interval: 1s
  max_message_length: 3000
database:
  enabled: true
`)
	v.Set("instructions_file", instructions)

	cfg, err := loadPipelineConfig(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/rss"}, cfg.Feeds.URLs)
	assert.Equal(t, 12*time.Hour, cfg.Feeds.Window)
	assert.Equal(t, "Be concise.", cfg.Instructions)
	require.NotNil(t, cfg.Completion.Temperature)
	assert.Equal(t, 0.2, *cfg.Completion.Temperature)
	assert.Nil(t, cfg.Completion.TopP)
	assert.Equal(t, 800, cfg.Completion.Extra["max_output_tokens"])
	assert.Equal(t, time.Second, cfg.Telegram.SendInterval)
	assert.Equal(t, 3000, cfg.Telegram.MaxMessageLength)
	assert.True(t, cfg.Database.Enabled)
}

func TestLoadInstructions_EnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSTRUCTIONS", "from env")
	path := filepath.Join(t.TempDir(), ".instructions")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))

	v := newTestViper(t, "")
	v.Set("instructions_file", path)

	got, err := loadInstructions(v)
	require.NoError(t, err)
	assert.Equal(t, "from env", got)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseList("a, b,"))
	assert.Equal(t, []string{"a"}, parseList([]string{" a ", ""}))
	assert.Equal(t, []string{"x", "1"}, parseList([]any{"x", 1}))
	assert.Nil(t, parseList(nil))
}
