package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maikostudios/SustentaM-sub001/internal/service"
	"github.com/maikostudios/SustentaM-sub001/pkg/response"
)

// SessionHandler 场次模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// ListByCourse 课程的场次列表（含占用）
// GET /api/v1/courses/:id/sessions
func (h *SessionHandler) ListByCourse(c *gin.Context) {
	sessions, err := h.sessionSvc.ListByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, gin.H{"list": sessions})
}

// GetSession 场次详情（含座位图）
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, session)
}

func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "场次不存在")
	default:
		response.InternalError(c)
	}
}
