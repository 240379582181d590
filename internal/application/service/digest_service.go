package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wolfitem/ai-digest/internal/domain/model"
	"github.com/wolfitem/ai-digest/internal/domain/service"
	"github.com/wolfitem/ai-digest/internal/infrastructure/ai"
	"github.com/wolfitem/ai-digest/internal/infrastructure/database"
	"github.com/wolfitem/ai-digest/internal/infrastructure/logger"
	"github.com/wolfitem/ai-digest/internal/infrastructure/telegram"
	"github.com/wolfitem/ai-digest/internal/middleware"
)

var (
	// ErrNoEntries 时间窗口内没有任何条目
	ErrNoEntries = errors.New("no entries in the time window")
	// ErrEmptySummary 模型没有返回任何文本
	ErrEmptySummary = errors.New("empty summary")

	errSummaryFailed = errors.New("summary request failed")
)

// DigestService 定义摘要推送流程的应用服务接口
type DigestService interface {
	// Run 执行一次完整流程：抓取、筛选、序列化、摘要、分段、推送
	Run(ctx context.Context) (model.RunRecord, error)
}

// Dependencies 流程依赖的各组件，为nil的字段由配置构建
type Dependencies struct {
	Feeds      service.FeedService
	Summarizer service.Summarizer
	Notifier   service.Notifier
	Runs       database.RunRepository
	Metrics    *middleware.MetricsCollector
	Now        func() time.Time
	Output     io.Writer
}

// digestService 实现DigestService接口
type digestService struct {
	config     model.PipelineConfig
	feeds      service.FeedService
	filter     *service.TimeFilter
	csv        *service.CSVService
	summarizer service.Summarizer
	notifier   service.Notifier
	runs       database.RunRepository
	metrics    *middleware.MetricsCollector
	now        func() time.Time
	out        io.Writer
}

// NewDigestService 根据配置创建应用服务
func NewDigestService(config model.PipelineConfig) DigestService {
	return NewDigestServiceWith(config, Dependencies{})
}

// NewDigestServiceWith 使用给定依赖创建应用服务
func NewDigestServiceWith(config model.PipelineConfig, deps Dependencies) DigestService {
	filter := service.NewTimeFilter(config.Feeds.UTCOffsetHours, config.Feeds.Window)

	s := &digestService{
		config:     config,
		feeds:      deps.Feeds,
		filter:     filter,
		csv:        service.NewCSVService(filter),
		summarizer: deps.Summarizer,
		notifier:   deps.Notifier,
		runs:       deps.Runs,
		metrics:    deps.Metrics,
		now:        deps.Now,
		out:        deps.Output,
	}

	if s.feeds == nil {
		s.feeds = service.NewFeedService(config.Feeds.Timeout)
	}
	if s.summarizer == nil {
		s.summarizer = ai.NewCompletionClient(config.Completion, config.Instructions)
	}
	if s.notifier == nil {
		s.notifier = telegram.NewClient(config.Telegram)
	}
	if s.metrics == nil {
		s.metrics = middleware.NewMetricsCollector()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s
}

// Run 执行一次完整流程
func (s *digestService) Run(ctx context.Context) (record model.RunRecord, err error) {
	defer logger.TimeTrack("Run")()
	logger.LogMemStatsOnce("start")

	start := time.Now()
	record.StartedAt = s.now()

	if s.config.Database.Enabled && s.runs == nil {
		db, dbErr := s.initDatabase(s.config.Database)
		if dbErr != nil {
			return record, dbErr
		}
		defer func() {
			db.Close()
			s.runs = nil
		}()
	}

	defer func() {
		record.DurationMsec = time.Since(start).Milliseconds()
		if err != nil && !errors.Is(err, ErrNoEntries) && !errors.Is(err, ErrEmptySummary) && record.Failure == "" {
			record.Failure = err.Error()
		}
		s.saveRun(&record)
		middleware.LogMetrics(s.metrics)
	}()

	// 1. 汇总订阅源
	sources, err := s.collectSources()
	if err != nil {
		return record, err
	}
	record.Sources = len(sources)

	// 2. 抓取并筛选最近的条目
	entries := s.feeds.FetchEntries(ctx, sources)
	filtered := s.filter.Filter(entries, s.now())
	record.Entries = len(filtered)
	s.metrics.RecordFeeds(len(sources), len(entries), len(filtered))
	logger.Info("条目筛选完成", "fetched", len(entries), "retained", len(filtered), "window", s.config.Feeds.Window)

	if len(filtered) == 0 {
		logger.Info("没有最近时间窗口内的文章")
		return record, ErrNoEntries
	}

	// 3. 生成CSV
	csvText, err := s.csv.Build(filtered)
	if err != nil {
		return record, fmt.Errorf("生成CSV失败: %w", err)
	}

	// 4. 请求摘要
	result, err := s.summarize(ctx, csvText)
	if err != nil {
		return record, fmt.Errorf("请求摘要失败: %w", err)
	}
	if !result.OK() {
		record.Failure = result.Failure.Kind.String()
		logger.Warn("摘要请求失败，将错误信息推送给用户",
			"kind", result.Failure.Kind.String(),
			"status_code", result.Failure.StatusCode)
	}

	summary := result.Render()
	record.Summary = summary
	if strings.TrimSpace(summary) == "" {
		logger.Info("没有生成任何摘要")
		return record, ErrEmptySummary
	}
	logger.Debug("摘要内容", "summary", summary)

	// 5. 分段并推送
	chunks := service.SplitMessage(summary, s.config.Telegram.MaxMessageLength)
	record.ChunksTotal = len(chunks)

	if s.config.DryRun {
		for i, chunk := range chunks {
			fmt.Fprintf(s.out, "----- %d/%d -----\n%s\n", i+1, len(chunks), chunk)
		}
		logger.Info("试运行模式，未推送消息", "chunks", len(chunks))
		return record, nil
	}

	record.ChunksSent = s.notifier.SendChunks(ctx, s.config.Telegram.ChatID, chunks)
	s.metrics.RecordDelivery(len(chunks), record.ChunksSent)
	logger.Info("推送完成", "chunks", len(chunks), "sent", record.ChunksSent)
	return record, nil
}

// collectSources 合并配置中的地址和OPML文件中的地址
func (s *digestService) collectSources() ([]string, error) {
	sources := append([]string(nil), s.config.Feeds.URLs...)
	if s.config.Feeds.OpmlFile == "" {
		return sources, nil
	}

	opmlSources, err := s.feeds.ParseOpml(s.config.Feeds.OpmlFile)
	if err != nil {
		return nil, err
	}
	return append(sources, opmlSources...), nil
}

// summarize 调用摘要客户端并记录调用指标
func (s *digestService) summarize(ctx context.Context, csvText string) (model.SummaryResult, error) {
	var result model.SummaryResult
	var callErr error

	track := middleware.NewMetricsMiddleware(s.metrics)
	_ = track(ctx, func() error {
		result, callErr = s.summarizer.Summarize(ctx, csvText)
		if callErr != nil {
			return callErr
		}
		if !result.OK() {
			return errSummaryFailed
		}
		return nil
	})

	return result, callErr
}

// initDatabase 初始化运行记录数据库
func (s *digestService) initDatabase(config model.DatabaseConfig) (database.Database, error) {
	db := database.NewSQLiteDatabase(config.FilePath)
	if err := db.Init(); err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	s.runs = database.NewSQLiteRunRepository(db)
	return db, nil
}

// saveRun 保存运行记录，失败只记录日志
func (s *digestService) saveRun(record *model.RunRecord) {
	if s.runs == nil {
		return
	}
	id, err := s.runs.SaveRun(*record)
	if err != nil {
		logger.Error("保存运行记录失败", "error", err)
		return
	}
	record.ID = id
}
