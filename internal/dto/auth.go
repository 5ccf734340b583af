package dto

// ── 认证模块 DTO ──

// LoginRequest 管理端登录请求
type LoginRequest struct {
	Username string `json:"user"     binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse 登录成功响应
type LoginResponse struct {
	JWT          string   `json:"jwt"`
	ExpiresIn    int      `json:"expires_in"` // 秒
	Roles        []string `json:"roles"`
	Capabilities []string `json:"capabilities"`
}
