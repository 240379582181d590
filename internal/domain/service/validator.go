package service

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/wolfitem/ai-digest/internal/domain/model"
)

// Validator 提供输入验证功能
type Validator struct{}

// NewValidator 创建新的验证器实例
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePipelineConfig 在发起任何网络请求之前检查运行配置
func (v *Validator) ValidatePipelineConfig(cfg model.PipelineConfig) error {
	var errs []error

	if len(cfg.Feeds.URLs) == 0 && cfg.Feeds.OpmlFile == "" {
		errs = append(errs, errors.New("未配置任何订阅源，请设置 FEED_URLS 或 feeds.opml_file"))
	}
	if cfg.Feeds.OpmlFile != "" {
		if err := v.ValidateOpmlPath(cfg.Feeds.OpmlFile); err != nil {
			errs = append(errs, err)
		}
	}
	for _, u := range cfg.Feeds.URLs {
		if err := v.ValidateFeedURL(u); err != nil {
			errs = append(errs, err)
		}
	}
	if strings.TrimSpace(cfg.Instructions) == "" {
		errs = append(errs, errors.New("未配置模型指令，请设置 INSTRUCTIONS 或提供指令文件"))
	}
	if strings.TrimSpace(cfg.Completion.Model) == "" {
		errs = append(errs, errors.New("未配置模型名称"))
	}
	if err := v.validateSecret("completion.api_key", "OPENAI_API_KEY", cfg.Completion.APIKey); err != nil {
		errs = append(errs, err)
	}

	if !cfg.DryRun {
		if err := v.validateSecret("telegram.bot_token", "TELEGRAM_BOT_TOKEN", cfg.Telegram.BotToken); err != nil {
			errs = append(errs, err)
		}
		if strings.TrimSpace(cfg.Telegram.ChatID) == "" {
			errs = append(errs, errors.New("未配置推送目标，请设置 TELEGRAM_CHAT_ID"))
		}
	}

	return errors.Join(errs...)
}

// validateSecret 检查密钥已配置且不是占位符
func (v *Validator) validateSecret(key, env, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("未找到%s配置，请设置环境变量: export %s=your-key-here", key, env)
	}
	if strings.Contains(value, "****") {
		return fmt.Errorf("检测到占位符%s，请使用环境变量 %s 设置真实值", key, env)
	}
	return nil
}

// ValidateFeedURL 验证订阅地址：允许http(s)、file协议和本地路径
func (v *Validator) ValidateFeedURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("订阅地址不能为空")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("无效的订阅地址 %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("订阅地址缺少主机名: %s", raw)
		}
	case "file", "":
	default:
		return fmt.Errorf("只允许HTTP/HTTPS或本地文件: %s", raw)
	}
	return nil
}

// ValidateOpmlPath 验证OPML文件路径
func (v *Validator) ValidateOpmlPath(filePath string) error {
	if strings.TrimSpace(filePath) == "" {
		return errors.New("文件路径不能为空")
	}

	cleanPath := filepath.Clean(filePath)
	if !strings.HasSuffix(strings.ToLower(cleanPath), ".opml") {
		return fmt.Errorf("只允许.OPML文件格式: %s", cleanPath)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("文件访问失败: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("路径指向目录而非文件: %s", cleanPath)
	}
	// 最大10MB
	if info.Size() > 10*1024*1024 {
		return fmt.Errorf("文件过大(>10MB): %s", cleanPath)
	}
	return nil
}
