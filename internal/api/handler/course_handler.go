package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/service"
	"github.com/maikostudios/SustentaM-sub001/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 课程列表
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, gin.H{"list": courses})
}

// GetCourse 课程详情（含场次占用）
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// CreateCourse 创建课程并生成场次
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse 删除课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courseSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrInvalidModality):
		response.BadRequest(c, 13002, "授课方式无效")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13003, "日期格式无效")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 13004, "结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrCourseSpanTooLarge):
		response.BadRequest(c, 13006, "课程日期跨度超过上限")
	case errors.Is(err, service.ErrCourseScheduleLocked):
		response.Conflict(c, 13005, "课程已有学员报名，不能修改排期")
	default:
		response.InternalError(c)
	}
}
