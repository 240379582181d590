package service

import (
	"context"

	"github.com/wolfitem/ai-digest/internal/domain/model"
)

// Summarizer 定义摘要客户端接口
type Summarizer interface {
	// Summarize 基于CSV文本生成摘要；只有传输层错误才返回error
	Summarize(ctx context.Context, csvText string) (model.SummaryResult, error)
}

// Notifier 定义消息推送接口
type Notifier interface {
	// SendChunks 按顺序推送每一段，返回成功推送的段数；单段失败只记录日志
	SendChunks(ctx context.Context, chatID string, chunks []string) int
}
