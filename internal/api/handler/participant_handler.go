package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/service"
	"github.com/maikostudios/SustentaM-sub001/pkg/response"
)

// ParticipantHandler 学员模块 HTTP 处理器
type ParticipantHandler struct {
	participantSvc service.ParticipantService
}

// NewParticipantHandler 创建 ParticipantHandler
func NewParticipantHandler(participantSvc service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantSvc: participantSvc}
}

// Enroll 报名
// POST /api/v1/sessions/:id/participants
func (h *ParticipantHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	p, err := h.participantSvc.Enroll(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}
	response.Created(c, p)
}

// ListBySession 场次学员名单
// GET /api/v1/sessions/:id/participants
func (h *ParticipantHandler) ListBySession(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.participantSvc.ListBySession(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListByCourse 课程学员名单
// GET /api/v1/courses/:id/participants
func (h *ParticipantHandler) ListByCourse(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.participantSvc.ListByCourse(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// RecordResults 录入出勤与成绩
// PUT /api/v1/participants/:id/results
func (h *ParticipantHandler) RecordResults(c *gin.Context) {
	var req dto.RecordResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	p, err := h.participantSvc.RecordResults(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}
	response.OK(c, p)
}

// Unenroll 取消报名
// DELETE /api/v1/participants/:id
func (h *ParticipantHandler) Unenroll(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.participantSvc.Unenroll(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleParticipantError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ParticipantHandler) handleParticipantError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "场次不存在")
	case errors.Is(err, service.ErrParticipantNotFound):
		response.NotFound(c, 15001, "学员不存在")
	case errors.Is(err, service.ErrSessionFull):
		response.Conflict(c, 15002, "场次已满")
	case errors.Is(err, service.ErrDuplicateEnrollment):
		response.Conflict(c, 15003, "该证件号已报名此场次")
	case errors.Is(err, service.ErrInvalidResults):
		response.BadRequest(c, 15004, "出勤率或成绩超出范围")
	case errors.Is(err, service.ErrCompanyForbidden):
		response.Forbidden(c, 15005, "只能管理本公司的学员")
	default:
		response.InternalError(c)
	}
}
