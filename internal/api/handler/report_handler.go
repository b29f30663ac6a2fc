package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maikostudios/SustentaM-sub001/internal/service"
	"github.com/maikostudios/SustentaM-sub001/pkg/response"
)

// ReportHandler 统计报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Overview 全部课程统计
// GET /api/v1/reports/overview
func (h *ReportHandler) Overview(c *gin.Context) {
	overview, err := h.reportSvc.Overview(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, overview)
}

// CourseSummary 单门课程统计
// GET /api/v1/reports/courses/:id
func (h *ReportHandler) CourseSummary(c *gin.Context) {
	summary, err := h.reportSvc.CourseSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFound(c, 13001, "课程不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, summary)
}
