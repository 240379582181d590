package ai

// Message 表示一条带角色的消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示一次模型请求。可选参数为nil时不会出现在请求体中
type Request struct {
	Model       string
	Messages    []Message
	Temperature *float64
	TopP        *float64
	Extra       map[string]any
}

// Payload 构建请求体，Extra中的字段原样合并到顶层
func (r Request) Payload() map[string]any {
	payload := map[string]any{
		"model": r.Model,
		"input": r.Messages,
	}
	if r.Temperature != nil {
		payload["temperature"] = *r.Temperature
	}
	if r.TopP != nil {
		payload["top_p"] = *r.TopP
	}
	for k, v := range r.Extra {
		payload[k] = v
	}
	return payload
}
