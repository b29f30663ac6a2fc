package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maikostudios/SustentaM-sub001/internal/api/middleware"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	pkgerrors "github.com/maikostudios/SustentaM-sub001/pkg/errors"
	"github.com/maikostudios/SustentaM-sub001/pkg/jwt"
	"github.com/maikostudios/SustentaM-sub001/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetCaller 提取调用者身份（用户、角色、公司）
func MustGetCaller(c *gin.Context) (dto.Caller, bool) {
	uid, ok := MustGetUserID(c)
	if !ok {
		return dto.Caller{}, false
	}
	role := c.GetString(middleware.ContextRole)
	if role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return dto.Caller{}, false
	}
	return dto.Caller{
		UserID:  uid,
		Role:    role,
		Company: c.GetString(middleware.ContextCompany),
	}, true
}

// claimsFrom 取出 JWT 中间件注入的 Claims，不存在时返回 nil
func claimsFrom(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(middleware.ContextClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// handleCommonError 处理各模块共用的错误，已处理时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		response.Conflict(c, 10006, "数据已被修改，请刷新后重试")
		return true
	}
	return false
}
