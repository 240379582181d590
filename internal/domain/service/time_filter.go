package service

import (
	"regexp"
	"time"

	"github.com/wolfitem/ai-digest/internal/domain/model"
)

const (
	// DefaultUTCOffsetHours 输出时间使用的时区偏移（UTC+3）
	DefaultUTCOffsetHours = 3
	// DefaultWindow 默认保留最近24小时的条目
	DefaultWindow = 24 * time.Hour

	// 部分站点（如Drupal）输出的发布时间文本格式
	freeTextLayout = "Mon, 01/02/2006 - 15:04"
)

var freeTextPattern = regexp.MustCompile(`^[A-Za-z]{3}, \d{2}/\d{2}/\d{4} - \d{2}:\d{2}$`)

// TimeFilter 将条目发布时间统一到固定时区，并筛选时间窗口内的条目
type TimeFilter struct {
	zone   *time.Location
	window time.Duration
}

// NewTimeFilter 创建时间过滤器，offsetHours为固定时区偏移
func NewTimeFilter(offsetHours int, window time.Duration) *TimeFilter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &TimeFilter{
		zone:   time.FixedZone("", offsetHours*3600),
		window: window,
	}
}

// Zone 返回输出使用的时区
func (f *TimeFilter) Zone() *time.Location {
	return f.zone
}

// ResolvePublished 解析条目的发布时间，优先使用结构化时间，其次是文本时间
func (f *TimeFilter) ResolvePublished(entry model.FeedEntry) (time.Time, bool) {
	if entry.PublishedParsed != nil && !entry.PublishedParsed.IsZero() {
		t := entry.PublishedParsed.UTC()
		// 结构化时间只取到秒
		utc := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		return utc.In(f.zone), true
	}

	if freeTextPattern.MatchString(entry.Published) {
		t, err := time.ParseInLocation(freeTextLayout, entry.Published, time.UTC)
		if err == nil {
			return t.In(f.zone), true
		}
	}

	return time.Time{}, false
}

// Filter 返回发布时间落在 [now-window, now] 内的条目，无法解析时间的条目被丢弃
func (f *TimeFilter) Filter(entries []model.FeedEntry, now time.Time) []model.NormalizedEntry {
	now = now.In(f.zone)
	since := now.Add(-f.window)

	var filtered []model.NormalizedEntry
	for _, entry := range entries {
		published, ok := f.ResolvePublished(entry)
		if !ok {
			continue
		}
		if published.Before(since) || published.After(now) {
			continue
		}
		filtered = append(filtered, model.NormalizedEntry{FeedEntry: entry, PublishedAt: published})
	}
	return filtered
}
