package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shelter-caller/pkg/redis"
	"shelter-caller/pkg/response"
)

// RateKeyFunc 计算限流计数键
type RateKeyFunc func(c *gin.Context) string

// ByClientIP 按 IP + 路由计数，用于登录与公开看板
func ByClientIP(c *gin.Context) string {
	return "rate_limit:ip:" + c.ClientIP() + ":" + c.FullPath()
}

// ByCaller 按来电号码 + 路由计数
// 电话流程的请求都来自服务商的少数出口 IP，按 IP 计数会让所有来电共用一个额度；
// 请求未携带 phone 时退回按 IP
func ByCaller(c *gin.Context) string {
	phone := strings.TrimSpace(c.PostForm("phone"))
	if phone == "" {
		phone = strings.TrimSpace(c.Query("phone"))
	}
	if phone == "" {
		return ByClientIP(c)
	}
	return "rate_limit:caller:" + phone + ":" + c.FullPath()
}

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// rdb 为 nil 或 limit <= 0 时不限流；Redis 出错时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, key RateKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key(c), limit, window)
		if err != nil || allowed {
			c.Next()
			return
		}

		response.Abort(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
	}
}
