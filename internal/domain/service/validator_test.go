package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfitem/ai-digest/internal/domain/model"
)

func validConfig() model.PipelineConfig {
	return model.PipelineConfig{
		Feeds:        model.FeedConfig{URLs: []string{"https://example.com/rss"}},
		Instructions: "Summarize the news",
		Completion:   model.CompletionConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
		Telegram:     model.TelegramConfig{BotToken: "123:abc", ChatID: "-100"},
	}
}

func TestValidator_ValidatePipelineConfig(t *testing.T) {
	v := NewValidator()

	tests := map[string]struct {
		mutate  func(*model.PipelineConfig)
		wantErr string
	}{
		"valid": {
			mutate: func(*model.PipelineConfig) {},
		},
		"no sources": {
			mutate:  func(c *model.PipelineConfig) { c.Feeds.URLs = nil },
			wantErr: "FEED_URLS",
		},
		"bad scheme": {
			mutate:  func(c *model.PipelineConfig) { c.Feeds.URLs = []string{"ftp://example.com/rss"} },
			wantErr: "ftp://example.com/rss",
		},
		"no instructions": {
			mutate:  func(c *model.PipelineConfig) { c.Instructions = "  " },
			wantErr: "INSTRUCTIONS",
		},
		"no model": {
			mutate:  func(c *model.PipelineConfig) { c.Completion.Model = "" },
			wantErr: "模型名称",
		},
		"no api key": {
			mutate:  func(c *model.PipelineConfig) { c.Completion.APIKey = "" },
			wantErr: "OPENAI_API_KEY",
		},
		"placeholder api key": {
			mutate:  func(c *model.PipelineConfig) { c.Completion.APIKey = "sk-****" },
			wantErr: "占位符",
		},
		"no bot token": {
			mutate:  func(c *model.PipelineConfig) { c.Telegram.BotToken = "" },
			wantErr: "TELEGRAM_BOT_TOKEN",
		},
		"no chat id": {
			mutate:  func(c *model.PipelineConfig) { c.Telegram.ChatID = "" },
			wantErr: "TELEGRAM_CHAT_ID",
		},
		"dry run skips telegram": {
			mutate: func(c *model.PipelineConfig) {
				c.DryRun = true
				c.Telegram = model.TelegramConfig{}
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := v.ValidatePipelineConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidator_ReportsAllProblems(t *testing.T) {
	err := NewValidator().ValidatePipelineConfig(model.PipelineConfig{})

	require.Error(t, err)
	for _, want := range []string{"FEED_URLS", "INSTRUCTIONS", "OPENAI_API_KEY", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidator_ValidateFeedURL(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateFeedURL("https://example.com/feed"))
	assert.NoError(t, v.ValidateFeedURL("http://example.com/feed"))
	assert.NoError(t, v.ValidateFeedURL("file:///tmp/feed.xml"))
	assert.NoError(t, v.ValidateFeedURL("./feed.xml"))

	assert.Error(t, v.ValidateFeedURL(""))
	assert.Error(t, v.ValidateFeedURL("https:///path-only"))
	assert.Error(t, v.ValidateFeedURL("gopher://example.com"))
}

func TestValidator_ValidateOpmlPath(t *testing.T) {
	v := NewValidator()
	dir := t.TempDir()

	good := filepath.Join(dir, "subs.opml")
	require.NoError(t, os.WriteFile(good, []byte("<opml/>"), 0o644))
	assert.NoError(t, v.ValidateOpmlPath(good))

	wrongExt := filepath.Join(dir, "subs.xml")
	require.NoError(t, os.WriteFile(wrongExt, []byte("<opml/>"), 0o644))
	assert.Error(t, v.ValidateOpmlPath(wrongExt))

	asDir := filepath.Join(dir, "folder.opml")
	require.NoError(t, os.Mkdir(asDir, 0o755))
	assert.Error(t, v.ValidateOpmlPath(asDir))

	assert.Error(t, v.ValidateOpmlPath(filepath.Join(dir, "missing.opml")))
	assert.Error(t, v.ValidateOpmlPath(""))
}
