package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/api/handler"
	"github.com/maikostudios/SustentaM-sub001/internal/api/middleware"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/pkg/jwt"
	"github.com/maikostudios/SustentaM-sub001/pkg/redis"
)

// 常用角色组合
var (
	adminOnly   = middleware.RoleAuth(model.RoleAdmin)
	canEnroll   = middleware.RoleAuth(model.RoleAdmin, model.RoleContractor)
	canViewData = middleware.RoleAuth(model.RoleAdmin, model.RoleUser)
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不检查 Token 黑名单，也不做限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		revoked middleware.RevocationChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		revoked, limiter = rdb, rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, revoked))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 账号管理
			users := authorized.Group("/users", adminOnly)
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", adminOnly, h.Course.CreateCourse)
				courses.PUT("/:id", adminOnly, h.Course.UpdateCourse)
				courses.DELETE("/:id", adminOnly, h.Course.DeleteCourse)
				courses.GET("/:id/sessions", h.Session.ListByCourse)
				courses.GET("/:id/participants", h.Participant.ListByCourse)
				courses.GET("/:id/calendar.ics", h.Calendar.ExportICS)
				courses.GET("/:id/certificates",
					middleware.RateLimit(limiter, cfg.Certificate.BatchRateLimit, cfg.Certificate.BatchRateWindow),
					h.Certificate.DownloadBatch,
				)
			}

			// 场次模块
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("/:id", h.Session.GetSession)
				sessions.GET("/:id/participants", h.Participant.ListBySession)
				sessions.POST("/:id/participants", canEnroll, h.Participant.Enroll)
			}

			// 学员模块（承包商只能操作本公司学员，Service 层鉴权）
			participants := authorized.Group("/participants")
			{
				participants.PUT("/:id/results", adminOnly, h.Participant.RecordResults)
				participants.DELETE("/:id", canEnroll, h.Participant.Unenroll)
				participants.GET("/:id/certificate", h.Certificate.Download)
			}

			authorized.GET("/certificates/templates", h.Certificate.ListTemplates)

			// 日历模块
			cal := authorized.Group("/calendar")
			{
				cal.GET("/month", h.Calendar.Month)
				cal.GET("/matrix", h.Calendar.Matrix)
				cal.GET("/matrix.xlsx", h.Calendar.ExportMatrix)
				cal.GET("/holidays", h.Calendar.Holidays)
			}

			// 统计报表
			reports := authorized.Group("/reports", canViewData)
			{
				reports.GET("/overview", h.Report.Overview)
				reports.GET("/courses/:id", h.Report.CourseSummary)
			}
		}
	}

	return r
}
