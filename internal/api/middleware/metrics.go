package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/pkg/metrics"
)

// Metrics 按路由模板统计请求数与耗时；未匹配路由归为 unmatched，避免标签膨胀
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
