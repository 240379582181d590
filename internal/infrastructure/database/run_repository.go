package database

import (
	"fmt"
	"time"

	"github.com/wolfitem/ai-digest/internal/domain/model"
)

// RunRepository 定义运行记录存储库接口
type RunRepository interface {
	// SaveRun 保存一次运行的记录，返回记录ID
	SaveRun(run model.RunRecord) (int64, error)
	// RecentRuns 按时间倒序返回最近的运行记录
	RecentRuns(limit int) ([]model.RunRecord, error)
}

// SQLiteRunRepository 实现RunRepository接口的SQLite存储库
type SQLiteRunRepository struct {
	db Database
}

// NewSQLiteRunRepository 创建一个新的SQLite运行记录存储库
func NewSQLiteRunRepository(db Database) RunRepository {
	return &SQLiteRunRepository{db: db}
}

// SaveRun 保存运行记录
func (r *SQLiteRunRepository) SaveRun(run model.RunRecord) (int64, error) {
	query := `
	INSERT INTO runs (started_at, sources, entries, summary, chunks_total, chunks_sent, failure, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Exec(query,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Sources, run.Entries, run.Summary,
		run.ChunksTotal, run.ChunksSent, run.Failure, run.DurationMsec)
	if err != nil {
		return 0, fmt.Errorf("保存运行记录失败: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("获取运行记录ID失败: %w", err)
	}
	return id, nil
}

// RecentRuns 返回最近的运行记录
func (r *SQLiteRunRepository) RecentRuns(limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
	SELECT id, started_at, sources, entries, summary, chunks_total, chunks_sent, failure, duration_ms
	FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var startedAt string
		if err := rows.Scan(&run.ID, &startedAt, &run.Sources, &run.Entries, &run.Summary,
			&run.ChunksTotal, &run.ChunksSent, &run.Failure, &run.DurationMsec); err != nil {
			return nil, fmt.Errorf("读取运行记录失败: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			run.StartedAt = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
