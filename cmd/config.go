package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/wolfitem/ai-digest/internal/domain/model"
	"github.com/wolfitem/ai-digest/internal/domain/service"
	"github.com/wolfitem/ai-digest/internal/infrastructure/ai"
	"github.com/wolfitem/ai-digest/internal/infrastructure/telegram"
)

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("feeds.timeout", 30*time.Second)
	v.SetDefault("feeds.window", service.DefaultWindow)
	v.SetDefault("feeds.utc_offset_hours", service.DefaultUTCOffsetHours)
	v.SetDefault("instructions_file", ".instructions")

	v.SetDefault("completion.model", ai.DefaultModel)
	v.SetDefault("completion.api_url", ai.DefaultAPIUrl)
	v.SetDefault("completion.timeout", 120*time.Second)

	v.SetDefault("telegram.api_url", telegram.DefaultAPIUrl)
	v.SetDefault("telegram.send_interval", telegram.DefaultSendInterval)
	v.SetDefault("telegram.max_message_length", service.DefaultMaxMessageLength)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.file_path", "data/digest.db")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.console", true)
	v.SetDefault("logger.file_path", "logs/ai-digest.log")
}

// loadPipelineConfig 从viper构建一次运行的配置
func loadPipelineConfig(v *viper.Viper) (model.PipelineConfig, error) {
	instructions, err := loadInstructions(v)
	if err != nil {
		return model.PipelineConfig{}, err
	}

	return model.PipelineConfig{
		Feeds: model.FeedConfig{
			URLs:           parseList(v.Get("feeds.urls")),
			OpmlFile:       v.GetString("feeds.opml_file"),
			Timeout:        v.GetDuration("feeds.timeout"),
			Window:         v.GetDuration("feeds.window"),
			UTCOffsetHours: v.GetInt("feeds.utc_offset_hours"),
		},
		Instructions: instructions,
		Completion: model.CompletionConfig{
			APIKey:      v.GetString("completion.api_key"),
			Model:       v.GetString("completion.model"),
			APIUrl:      v.GetString("completion.api_url"),
			Temperature: optionalFloat(v, "completion.temperature"),
			TopP:        optionalFloat(v, "completion.top_p"),
			Extra:       v.GetStringMap("completion.extra"),
			Timeout:     v.GetDuration("completion.timeout"),
		},
		Telegram: model.TelegramConfig{
			BotToken:         v.GetString("telegram.bot_token"),
			ChatID:           v.GetString("telegram.chat_id"),
			APIUrl:           v.GetString("telegram.api_url"),
			SendInterval:     v.GetDuration("telegram.send_interval"),
			MaxMessageLength: v.GetInt("telegram.max_message_length"),
		},
		Database: model.DatabaseConfig{
			Enabled:  v.GetBool("database.enabled"),
			FilePath: v.GetString("database.file_path"),
		},
	}, nil
}

// loadInstructions 优先使用 INSTRUCTIONS，否则读取指令文件
func loadInstructions(v *viper.Viper) (string, error) {
	if s := strings.TrimSpace(v.GetString("instructions")); s != "" {
		return s, nil
	}

	path := v.GetString("instructions_file")
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("读取指令文件失败: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// optionalFloat 只有显式配置时才返回值
func optionalFloat(v *viper.Viper, key string) *float64 {
	if !v.IsSet(key) {
		return nil
	}
	f := v.GetFloat64(key)
	return &f
}

// parseList 支持逗号分隔的字符串和YAML列表
func parseList(value any) []string {
	var raw []string
	switch t := value.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			raw = append(raw, fmt.Sprint(item))
		}
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
