package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wolfitem/ai-digest/internal/infrastructure/logger"
)

// MetricsCollector 收集一次运行的各阶段指标
type MetricsCollector struct {
	mu sync.RWMutex

	startTime time.Time

	// API调用统计
	apiCalls     int64
	apiFailures  int64
	apiDurations []time.Duration

	// 订阅源统计
	sources  int64
	fetched  int64
	retained int64

	// 推送统计
	chunksTotal int64
	chunksSent  int64
}

// NewMetricsCollector 创建新的指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startTime:    time.Now(),
		apiDurations: make([]time.Duration, 0, 4),
	}
}

// RecordAPICall 记录API调用
func (m *MetricsCollector) RecordAPICall(duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.apiCalls++
	if !success {
		m.apiFailures++
	}
	m.apiDurations = append(m.apiDurations, duration)
}

// RecordFeeds 记录订阅源抓取和筛选结果
func (m *MetricsCollector) RecordFeeds(sources, fetched, retained int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sources += int64(sources)
	m.fetched += int64(fetched)
	m.retained += int64(retained)
}

// RecordDelivery 记录推送结果
func (m *MetricsCollector) RecordDelivery(total, sent int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chunksTotal += int64(total)
	m.chunksSent += int64(sent)
}

// GetReport 获取指标报告
func (m *MetricsCollector) GetReport() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Report{
		Uptime: time.Since(m.startTime),
		APIStats: APIStats{
			TotalCalls:     m.apiCalls,
			Failed:         m.apiFailures,
			SuccessRate:    m.calculateSuccessRate(),
			AverageLatency: m.averageAPIDuration().Milliseconds(),
		},
		FeedStats: FeedStats{
			Sources:  m.sources,
			Fetched:  m.fetched,
			Retained: m.retained,
		},
		DeliveryStats: DeliveryStats{
			Chunks: m.chunksTotal,
			Sent:   m.chunksSent,
		},
	}
}

// averageAPIDuration 获取平均API响应时间
func (m *MetricsCollector) averageAPIDuration() time.Duration {
	if len(m.apiDurations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range m.apiDurations {
		total += d
	}
	return total / time.Duration(len(m.apiDurations))
}

// calculateSuccessRate 计算成功率
func (m *MetricsCollector) calculateSuccessRate() float64 {
	if m.apiCalls == 0 {
		return 100.0
	}
	return float64(m.apiCalls-m.apiFailures) / float64(m.apiCalls) * 100
}

// Report 运行报告
type Report struct {
	Uptime        time.Duration
	APIStats      APIStats
	FeedStats     FeedStats
	DeliveryStats DeliveryStats
}

// APIStats API统计信息
type APIStats struct {
	TotalCalls     int64
	Failed         int64
	SuccessRate    float64
	AverageLatency int64
}

// FeedStats 订阅源统计
type FeedStats struct {
	Sources  int64
	Fetched  int64
	Retained int64
}

// DeliveryStats 推送统计
type DeliveryStats struct {
	Chunks int64
	Sent   int64
}

// WithMetrics 中间件函数包装器
type WithMetrics func(context.Context, func() error) error

// NewMetricsMiddleware 创建API调用计时中间件，fn返回的error视为失败
func NewMetricsMiddleware(collector *MetricsCollector) WithMetrics {
	return func(ctx context.Context, fn func() error) error {
		start := time.Now()
		err := fn()
		collector.RecordAPICall(time.Since(start), err == nil)
		return err
	}
}

// LogMetrics 记录指标到日志
func LogMetrics(metrics *MetricsCollector) {
	report := metrics.GetReport()
	logger.Info("运行指标",
		"uptime", report.Uptime,
		"api_calls", report.APIStats.TotalCalls,
		"api_success_rate", fmt.Sprintf("%.2f%%", report.APIStats.SuccessRate),
		"api_avg_latency", fmt.Sprintf("%dms", report.APIStats.AverageLatency),
		"feed_sources", report.FeedStats.Sources,
		"entries_fetched", report.FeedStats.Fetched,
		"entries_retained", report.FeedStats.Retained,
		"chunks", report.DeliveryStats.Chunks,
		"chunks_sent", report.DeliveryStats.Sent,
	)
}
