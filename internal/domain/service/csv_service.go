package service

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/wolfitem/ai-digest/internal/domain/model"
)

// CSVDateLayout 表格中日期列的格式
const CSVDateLayout = "2006-01-02 15:04:05"

// CSVHeader 表格的固定表头
var CSVHeader = []string{"Date", "Title", "Description", "Link"}

// CSVService 将条目序列化为分号分隔的CSV文本
type CSVService struct {
	filter *TimeFilter
}

// NewCSVService 创建CSV序列化服务，filter用于再次校验发布时间
func NewCSVService(filter *TimeFilter) *CSVService {
	return &CSVService{filter: filter}
}

// Build 生成表头加每个条目一行的CSV文本，标题和描述去除HTML
func (s *CSVService) Build(entries []model.NormalizedEntry) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	w.UseCRLF = true

	if err := w.Write(CSVHeader); err != nil {
		return "", fmt.Errorf("写入CSV表头失败: %w", err)
	}

	for _, entry := range entries {
		published, ok := s.filter.ResolvePublished(entry.FeedEntry)
		if !ok {
			continue
		}

		row := []string{
			published.Format(CSVDateLayout),
			StripHTML(entry.Title),
			StripHTML(entry.Summary),
			entry.Link,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("写入CSV行失败: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("生成CSV失败: %w", err)
	}
	return buf.String(), nil
}
