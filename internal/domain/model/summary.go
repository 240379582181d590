package model

import (
	"fmt"
	"strings"
)

// FailureKind 区分摘要请求失败的类型
type FailureKind int

const (
	// FailureStatus 接口返回非200，且没有可剔除的参数
	FailureStatus FailureKind = iota + 1
	// FailureRetry 剔除不支持的参数后重试仍然失败
	FailureRetry
)

func (k FailureKind) String() string {
	switch k {
	case FailureStatus:
		return "status"
	case FailureRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// Failure 描述一次失败的摘要请求
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Body       string
	Removed    []string // 重试时剔除的参数
}

// SummaryResult 摘要请求的结果：成功时Text有效，失败时Failure非nil
type SummaryResult struct {
	Text    string
	Failure *Failure
}

// OK 表示请求成功
func (r SummaryResult) OK() bool {
	return r.Failure == nil
}

// Render 返回最终推送给用户的文本，失败时渲染为 "Error: <status> - <body>"
func (r SummaryResult) Render() string {
	if r.Failure == nil {
		return r.Text
	}
	msg := fmt.Sprintf("Error: %d - %s", r.Failure.StatusCode, r.Failure.Body)
	if r.Failure.Kind == FailureRetry && len(r.Failure.Removed) > 0 {
		msg += fmt.Sprintf(" (retried without: %s)", strings.Join(r.Failure.Removed, ", "))
	}
	return msg
}
