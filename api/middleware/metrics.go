package middleware

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	requestCount    int64
	requestDuration int64 // in milliseconds
)

// Metrics 基础监控指标中间件
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		// 计算请求耗时
		atomic.AddInt64(&requestDuration, time.Since(startTime).Milliseconds())
		atomic.AddInt64(&requestCount, 1)
	}
}

// GetMetrics 获取当前指标
func GetMetrics() map[string]interface{} {
	count := atomic.LoadInt64(&requestCount)
	duration := atomic.LoadInt64(&requestDuration)

	avg := float64(0)
	if count > 0 {
		avg = float64(duration) / float64(count)
	}

	return map[string]interface{}{
		"request_count":       count,
		"request_duration_ms": duration,
		"avg_duration_ms":     avg,
	}
}

// ResetMetrics 重置指标（用于测试）
func ResetMetrics() {
	atomic.StoreInt64(&requestCount, 0)
	atomic.StoreInt64(&requestDuration, 0)
}
