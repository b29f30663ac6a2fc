package dto

// ── 证书模块 DTO ──

// CertificateRequest 单张证书查询参数
type CertificateRequest struct {
	Template string `form:"template" binding:"omitempty,oneof=classic modern elegant"`
}

// BatchCertificateRequest 批量证书查询参数
type BatchCertificateRequest struct {
	Template  string `form:"template"   binding:"omitempty,oneof=classic modern elegant"`
	SessionID string `form:"session_id" binding:"omitempty,uuid"` // 为空时取整门课程
}
