package model

import "time"

// PipelineConfig 包含一次摘要推送运行所需的全部配置，启动时构建一次后按值传递
type PipelineConfig struct {
	Feeds        FeedConfig       // 订阅源配置
	Instructions string           // 发给模型的系统指令
	Completion   CompletionConfig // 模型接口配置
	Telegram     TelegramConfig   // 推送配置
	Database     DatabaseConfig   // 运行日志数据库配置
	DryRun       bool             // 只打印分段结果，不推送
}

// FeedConfig 包含订阅源相关配置
type FeedConfig struct {
	URLs           []string      // RSS/Atom 地址列表
	OpmlFile       string        // 可选的OPML文件
	Timeout        time.Duration // 单个源的抓取超时
	Window         time.Duration // 保留的时间窗口
	UTCOffsetHours int           // 输出时间使用的固定时区偏移
}

// CompletionConfig 包含模型接口的配置信息
type CompletionConfig struct {
	APIKey      string         // API密钥
	Model       string         // 模型名称
	APIUrl      string         // API接口地址
	Temperature *float64       // 采样温度，nil表示不发送
	TopP        *float64       // nucleus采样，nil表示不发送
	Extra       map[string]any // 原样合并到请求体顶层的字段
	Timeout     time.Duration  // 请求超时
}

// TelegramConfig 包含机器人推送配置
type TelegramConfig struct {
	BotToken         string        // 机器人令牌
	ChatID           string        // 目标会话
	APIUrl           string        // Bot API 地址
	SendInterval     time.Duration // 相邻两条消息之间的间隔
	MaxMessageLength int           // 单条消息最大长度
}

// DatabaseConfig 包含数据库的配置信息
type DatabaseConfig struct {
	Enabled  bool   // 是否启用数据库
	FilePath string // 数据库文件路径
}

// FeedEntry 表示从订阅源解析出的一条原始条目
type FeedEntry struct {
	Title           string     // 标题（可能含HTML）
	Summary         string     // 描述（可能含HTML）
	Link            string     // 文章链接
	PublishedParsed *time.Time // 结构化发布时间
	Published       string     // 原始发布时间文本
	Source          string     // 来源地址
}

// NormalizedEntry 表示发布时间已解析并转换到固定时区的条目
type NormalizedEntry struct {
	FeedEntry
	PublishedAt time.Time
}

// RunRecord 表示一次运行的记录
type RunRecord struct {
	ID           int64
	StartedAt    time.Time
	Sources      int
	Entries      int
	Summary      string
	ChunksTotal  int
	ChunksSent   int
	Failure      string
	DurationMsec int64
}
