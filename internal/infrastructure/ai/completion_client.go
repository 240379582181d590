package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wolfitem/ai-digest/internal/domain/model"
	"github.com/wolfitem/ai-digest/internal/infrastructure/logger"
)

const (
	// DefaultAPIUrl 默认的模型接口地址
	DefaultAPIUrl = "https://api.openai.com/v1/responses"
	// DefaultModel 默认模型
	DefaultModel = "gpt-4o-mini"

	// userPrefix 用户消息中CSV数据的前缀
	userPrefix = "NEWS in CSV format:\n"

	// 最大响应大小 10MB
	maxResponseSize = 10 * 1024 * 1024
)

// CompletionClient 实现service.Summarizer接口
type CompletionClient struct {
	config       model.CompletionConfig
	instructions string
	client       *http.Client
	log          *logger.ContextLogger
}

// NewCompletionClient 创建新的模型客户端
func NewCompletionClient(config model.CompletionConfig, instructions string) *CompletionClient {
	if config.APIUrl == "" {
		config.APIUrl = DefaultAPIUrl
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: config.Timeout,
		ExpectContinueTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
	}

	return &CompletionClient{
		config:       config,
		instructions: instructions,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		log: logger.WithContext("completion"),
	}
}

// BuildRequest 构建系统指令加CSV数据的两条消息请求
func (c *CompletionClient) BuildRequest(csvText string) Request {
	return Request{
		Model: c.config.Model,
		Messages: []Message{
			{Role: "system", Content: c.instructions},
			{Role: "user", Content: userPrefix + csvText},
		},
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
		Extra:       c.config.Extra,
	}
}

// Summarize 请求模型生成摘要。
// 400/422 且响应指出不支持的参数时，剔除这些参数后重试一次；
// 非200的结果以Failure返回，只有传输错误和无法解析的200响应返回error。
func (c *CompletionClient) Summarize(ctx context.Context, csvText string) (model.SummaryResult, error) {
	defer logger.TimeTrack("Summarize")()

	if _, err := url.Parse(c.config.APIUrl); err != nil {
		return model.SummaryResult{}, fmt.Errorf("无效的API端点: %w", err)
	}

	payload := c.BuildRequest(csvText).Payload()
	c.log.Debug("模型请求参数",
		"model", c.config.Model,
		"api_key", logger.MaskSecret(c.config.APIKey),
		"csv_length", len(csvText))

	status, body, err := c.post(ctx, payload)
	if err != nil {
		return model.SummaryResult{}, err
	}
	if status == http.StatusOK {
		return c.success(body)
	}

	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		if fields := UnrecognizedArguments(string(body)); len(fields) > 0 {
			for _, f := range fields {
				delete(payload, f)
			}
			c.log.Warn("接口不支持部分参数，剔除后重试", "status_code", status, "removed", fields)

			status, body, err = c.post(ctx, payload)
			if err != nil {
				return model.SummaryResult{}, err
			}
			if status == http.StatusOK {
				return c.success(body)
			}
			c.log.Error("重试后仍然失败", "status_code", status, "response", string(body))
			return model.SummaryResult{Failure: &model.Failure{
				Kind:       model.FailureRetry,
				StatusCode: status,
				Body:       string(body),
				Removed:    fields,
			}}, nil
		}
	}

	c.log.Error("API请求返回错误", "status_code", status, "response", string(body))
	return model.SummaryResult{Failure: &model.Failure{
		Kind:       model.FailureStatus,
		StatusCode: status,
		Body:       string(body),
	}}, nil
}

// success 处理200响应
func (c *CompletionClient) success(body []byte) (model.SummaryResult, error) {
	e, err := decodeEnvelope(body)
	if err != nil {
		return model.SummaryResult{}, err
	}
	if e.Usage != nil {
		c.log.Info("API使用统计",
			"input_tokens", e.Usage.InputTokens+e.Usage.PromptTokens,
			"output_tokens", e.Usage.OutputTokens+e.Usage.CompletionTokens,
			"total_tokens", e.Usage.TotalTokens)
	}

	text := extractText(e)
	c.log.Info("成功获取模型响应", "content_length", len(text))
	return model.SummaryResult{Text: text}, nil
}

// post 发送一次请求并返回状态码和响应体
func (c *CompletionClient) post(ctx context.Context, payload map[string]any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("创建请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIUrl, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("User-Agent", "AI-Digest-Client/1.0")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("读取API响应失败: %w", err)
	}

	c.log.Info("收到模型响应",
		"status_code", resp.StatusCode,
		"response_size_bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds())
	return resp.StatusCode, body, nil
}
