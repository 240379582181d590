package logger

import "runtime"

// LogMemStatsOnce 记录一次内存使用统计
func LogMemStatsOnce(stage string) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	Debug("内存使用统计",
		"stage", stage,
		"alloc_mb", stats.Alloc/1024/1024,
		"sys_mb", stats.Sys/1024/1024,
		"heap_alloc_mb", stats.HeapAlloc/1024/1024,
		"num_gc", stats.NumGC)
}
