package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gilliek/go-opml/opml"
	"github.com/mmcdole/gofeed"
	"github.com/wolfitem/ai-digest/internal/domain/model"
	"github.com/wolfitem/ai-digest/internal/infrastructure/logger"
)

// FeedService 定义订阅源聚合的领域服务接口
type FeedService interface {
	// ParseOpml 解析OPML文件并返回其中的订阅地址
	ParseOpml(opmlFilePath string) ([]string, error)

	// FetchEntries 依次抓取每个订阅源，单个源失败不影响其余源
	FetchEntries(ctx context.Context, sources []string) []model.FeedEntry
}

// feedService 实现FeedService接口
type feedService struct {
	parser *gofeed.Parser
	log    *logger.ContextLogger
}

// NewFeedService 创建订阅源服务，timeout为单个源的HTTP超时
func NewFeedService(timeout time.Duration) FeedService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: timeout}
	fp.UserAgent = "AI-Digest/1.0"

	return &feedService{
		parser: fp,
		log:    logger.WithContext("feed"),
	}
}

// ParseOpml 解析OPML文件并返回订阅地址列表
func (s *feedService) ParseOpml(opmlFilePath string) ([]string, error) {
	s.log.Info("开始解析OPML文件", "file", opmlFilePath)

	doc, err := opml.NewOPMLFromFile(opmlFilePath)
	if err != nil {
		return nil, fmt.Errorf("解析OPML文件失败: %w", err)
	}

	var urls []string
	for _, outline := range doc.Outlines() {
		urls = append(urls, extractFeedURLs(outline)...)
	}

	s.log.Info("OPML文件解析完成", "file", opmlFilePath, "sources_count", len(urls))
	return urls, nil
}

// extractFeedURLs 递归提取outline中的订阅地址
func extractFeedURLs(outline opml.Outline) []string {
	var urls []string
	if outline.XMLURL != "" {
		urls = append(urls, outline.XMLURL)
	}
	for _, child := range outline.Outlines {
		urls = append(urls, extractFeedURLs(child)...)
	}
	return urls
}

// FetchEntries 按输入顺序抓取订阅源并拼接所有条目
func (s *feedService) FetchEntries(ctx context.Context, sources []string) []model.FeedEntry {
	defer logger.TimeTrack("FetchEntries")()

	var entries []model.FeedEntry
	for _, source := range sources {
		feed, err := s.parse(ctx, source)
		if err != nil {
			s.log.Error("抓取订阅源失败", "url", source, "error", err)
			continue
		}

		for _, item := range feed.Items {
			if item == nil {
				continue
			}
			entries = append(entries, toFeedEntry(item, source))
		}
		s.log.Info("成功获取订阅源", "url", source, "entries_count", len(feed.Items))
	}

	s.log.Info("所有订阅源处理完成", "sources_count", len(sources), "total_entries", len(entries))
	return entries
}

// parse 根据地址类型选择网络抓取或本地文件解析
func (s *feedService) parse(ctx context.Context, source string) (*gofeed.Feed, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("无效的订阅地址: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return s.parser.ParseURLWithContext(source, ctx)
	case "file", "":
		path := source
		if u.Scheme == "file" {
			path = u.Path
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("打开订阅文件失败: %w", err)
		}
		defer f.Close()
		return s.parser.Parse(f)
	default:
		return nil, fmt.Errorf("不支持的协议: %s", u.Scheme)
	}
}

// toFeedEntry 将gofeed条目转换为领域模型
func toFeedEntry(item *gofeed.Item, source string) model.FeedEntry {
	summary := item.Description
	if strings.TrimSpace(summary) == "" {
		summary = item.Content
	}

	return model.FeedEntry{
		Title:           item.Title,
		Summary:         summary,
		Link:            item.Link,
		PublishedParsed: item.PublishedParsed,
		Published:       item.Published,
		Source:          source,
	}
}
