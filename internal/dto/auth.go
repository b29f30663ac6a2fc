package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Caller 当前请求的调用者身份（来自 JWT）
type Caller struct {
	UserID  string
	Role    string
	Company string
}

// IsAdmin 是否为管理员
func (c Caller) IsAdmin() bool { return c.Role == "admin" }

// IsContractor 是否为承包商账号（数据按公司隔离）
func (c Caller) IsContractor() bool { return c.Role == "contractor" }
