package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求（注册时选择角色，创建后不可修改）
type RegisterRequest struct {
	Email    string `json:"email"     binding:"required,email"`
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Password string `json:"password"  binding:"required,min=8,max=64"`
	Role     string `json:"role"      binding:"required,oneof=admin coach student"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
