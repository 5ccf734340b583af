package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shelter-caller/internal/authz"
	"shelter-caller/pkg/jwt"
	"shelter-caller/pkg/redis"
	"shelter-caller/pkg/response"
)

// 与 handler 包约定的上下文键
const (
	ctxUserID = "user_id"
	ctxRoles  = "roles"
	ctxClaims = "claims"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 token；rdb 不为 nil 时拒绝已注销的 token
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, 10002, "缺少认证头")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, http.StatusUnauthorized, 10002, "认证头格式无效")
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, 10002, "Token 无效或已过期")
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// Redis 故障时降级放行
				logger.Warn("查询 token 黑名单失败", zap.Error(err))
			} else if revoked {
				response.Abort(c, http.StatusUnauthorized, 10002, "Token 已注销")
				return
			}
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRoles, claims.Roles)

		c.Next()
	}
}

// Require 能力校验中间件，须挂在 JWTAuth 之后
// 不区分资源是否存在，统一返回 403
func Require(authorizer *authz.Authorizer, capability authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ctxRoles)
		if !exists {
			response.Abort(c, http.StatusUnauthorized, 10002, "未认证")
			return
		}

		roles, _ := v.([]string)
		if !authorizer.Allowed(roles, capability) {
			response.Abort(c, http.StatusForbidden, 10003, "无权限访问")
			return
		}

		c.Next()
	}
}
