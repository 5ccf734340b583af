package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"shelter-caller/pkg/jwt"
	"shelter-caller/pkg/response"
)

// 中间件写入上下文的键
const (
	CtxUserID = "user_id"
	CtxRoles  = "roles"
	CtxClaims = "claims"
)

// MustGetClaims 从 Gin 上下文中安全提取 JWT 声明。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// GetRoles 当前调用方的角色；未认证时为空
func GetRoles(c *gin.Context) []string {
	v, exists := c.Get(CtxRoles)
	if !exists {
		return nil
	}
	roles, _ := v.([]string)
	return roles
}

// pageParam 解析路径中的页码，缺省或非法时为 0
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// uintParam 解析路径中的正整数 ID
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
