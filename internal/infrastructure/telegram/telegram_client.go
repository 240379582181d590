package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wolfitem/ai-digest/internal/domain/model"
	"github.com/wolfitem/ai-digest/internal/infrastructure/logger"
)

const (
	// DefaultAPIUrl Telegram Bot API 地址
	DefaultAPIUrl = "https://api.telegram.org"
	// DefaultSendInterval 相邻两条消息之间的间隔，接口本身不保证快速连续调用的顺序
	DefaultSendInterval = 500 * time.Millisecond
)

// sendMessageRequest sendMessage 的请求体
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse Bot API 的通用响应
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Client 实现service.Notifier接口
type Client struct {
	config model.TelegramConfig
	http   *resty.Client
	sleep  func(ctx context.Context, d time.Duration) error
	log    *logger.ContextLogger
}

// NewClient 创建新的Telegram客户端
func NewClient(config model.TelegramConfig) *Client {
	if config.APIUrl == "" {
		config.APIUrl = DefaultAPIUrl
	}
	if config.SendInterval < 0 {
		config.SendInterval = 0
	}

	client := resty.New().
		SetBaseURL(config.APIUrl).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		config: config,
		http:   client,
		sleep:  sleepContext,
		log:    logger.WithContext("telegram"),
	}
}

// SendChunks 依次发送每一段，段与段之间等待固定间隔。
// 单段失败只记录日志，继续发送后续分段。
func (c *Client) SendChunks(ctx context.Context, chatID string, chunks []string) int {
	sent := 0
	for i, chunk := range chunks {
		if i > 0 && c.config.SendInterval > 0 {
			if err := c.sleep(ctx, c.config.SendInterval); err != nil {
				c.log.Warn("发送被取消", "sent", sent, "total", len(chunks), "error", err)
				return sent
			}
		}

		if err := c.SendMessage(ctx, chatID, chunk); err != nil {
			c.log.Error("发送消息失败", "chunk", i+1, "total", len(chunks), "error", err)
			continue
		}
		sent++
		c.log.Info("消息发送成功", "chunk", i+1, "total", len(chunks), "length", len(chunk))
	}
	return sent
}

// SendMessage 以Markdown格式发送一条消息，并关闭链接预览
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	var result apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("token", c.config.BotToken).
		SetBody(sendMessageRequest{
			ChatID:                chatID,
			Text:                  text,
			ParseMode:             "Markdown",
			DisableWebPagePreview: true,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}

	if resp.IsError() || !result.OK {
		return fmt.Errorf("Telegram返回错误(状态码:%d): %s", resp.StatusCode(), result.Description)
	}
	return nil
}

// sleepContext 等待d，期间可被ctx取消
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
