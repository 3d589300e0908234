package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// requestIDMaxLen 外部传入的 Request-ID 最大长度
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 从请求头 X-Request-ID 读取，若不存在或过长则生成 UUID，
// 写入 gin.Context 与响应头，错误响应与访问日志均会带上
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(response.RequestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}
