package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shelter-caller/pkg/response"
)

// BodyLimit 请求体大小限制
// 声明的 Content-Length 超限直接 413；未声明长度时由 MaxBytesReader 在读取时截断，绑定失败按参数错误处理
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Abort(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
