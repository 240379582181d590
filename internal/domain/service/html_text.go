package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// 先用UGC策略去掉script/style等不可见内容，再提取纯文本
var sanitizePolicy = bluemonday.UGCPolicy()

// StripHTML 去除HTML标签，只保留纯文本；无法解析时返回原始内容
func StripHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	sanitized := sanitizePolicy.Sanitize(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return strings.TrimSpace(html)
	}

	// 将连续的空白字符替换为单个空格
	return strings.Join(strings.Fields(doc.Text()), " ")
}
