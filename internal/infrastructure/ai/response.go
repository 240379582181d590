package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// envelope 覆盖接口可能返回的三种响应结构：
// 顶层 output_text、output 数组，以及旧版 chat completions 的 choices
type envelope struct {
	OutputText string       `json:"output_text"`
	Output     []outputItem `json:"output"`
	Choices    []choice     `json:"choices"`
	Usage      *usage       `json:"usage"`
}

type outputItem struct {
	Type    string        `json:"type"`
	Text    string        `json:"text"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type choice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type usage struct {
	InputTokens      int `json:"input_tokens"`
	OutputTokens     int `json:"output_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// extractor 从某一种响应结构中提取文本
type extractor func(envelope) (string, bool)

// extractors 按优先级排列
var extractors = []extractor{
	fromOutputText,
	fromOutputItems,
	fromChoices,
}

func fromOutputText(e envelope) (string, bool) {
	return e.OutputText, e.OutputText != ""
}

func fromOutputItems(e envelope) (string, bool) {
	var sb strings.Builder
	for _, item := range e.Output {
		switch item.Type {
		case "output_text", "text":
			sb.WriteString(item.Text)
		case "message":
			for _, part := range item.Content {
				if isTextPart(part.Type) {
					sb.WriteString(part.Text)
				}
			}
		}
	}
	return sb.String(), sb.Len() > 0
}

func isTextPart(t string) bool {
	return t == "output_text" || t == "text"
}

func fromChoices(e envelope) (string, bool) {
	if len(e.Choices) == 0 {
		return "", false
	}
	content := e.Choices[0].Message.Content
	return content, content != ""
}

// decodeEnvelope 解析200响应
func decodeEnvelope(body []byte) (envelope, error) {
	var e envelope
	if err := json.Unmarshal(body, &e); err != nil {
		return envelope{}, fmt.Errorf("解析API响应失败: %w", err)
	}
	return e, nil
}

// ExtractText 依次尝试各种响应结构，都没有文本时返回空字符串
func ExtractText(body []byte) (string, error) {
	e, err := decodeEnvelope(body)
	if err != nil {
		return "", err
	}
	return extractText(e), nil
}

func extractText(e envelope) string {
	for _, extract := range extractors {
		if text, ok := extract(e); ok {
			return text
		}
	}
	return ""
}

var unrecognizedArgPattern = regexp.MustCompile(`Unrecognized request argument: \b(\w+)\b`)

// UnrecognizedArguments 从错误响应中找出接口不支持的参数名，按出现顺序去重
func UnrecognizedArguments(body string) []string {
	var fields []string
	seen := make(map[string]bool)
	for _, m := range unrecognizedArgPattern.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			fields = append(fields, m[1])
		}
	}
	return fields
}
