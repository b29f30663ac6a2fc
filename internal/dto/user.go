package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
}

// CreateUserRequest 创建账号请求（管理员）
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Role     string `json:"role"     binding:"required,oneof=admin contractor user"`
	Company  string `json:"company"  binding:"omitempty,max=150"` // 承包商必填
}
