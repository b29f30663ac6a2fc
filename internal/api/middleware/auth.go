package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maikostudios/SustentaM-sub001/pkg/jwt"
	"github.com/maikostudios/SustentaM-sub001/pkg/response"
)

// 上下文键
const (
	ContextUserID  = "user_id"
	ContextRole    = "role"
	ContextCompany = "company"
	ContextClaims  = "claims"
)

// RevocationChecker 查询 Token 是否已注销（Redis 黑名单）
type RevocationChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// revoked 为 nil 或查询出错时不检查黑名单
func JWTAuth(jwtMgr *jwt.Manager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if revoked != nil && claims.ID != "" {
			if hit, err := revoked.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && hit {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		// 将用户信息注入上下文
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextCompany, claims.Company)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextRole)
		if userRole == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
