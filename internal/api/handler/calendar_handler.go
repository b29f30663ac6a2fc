package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/service"
	"github.com/maikostudios/SustentaM-sub001/pkg/response"
)

// CalendarHandler 日历模块 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Month 月视图
// GET /api/v1/calendar/month?year=2025&month=9
func (h *CalendarHandler) Month(c *gin.Context) {
	var req dto.MonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	month, err := h.calendarSvc.Month(c.Request.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	response.OK(c, month)
}

// Matrix 课程 × 日期矩阵
// GET /api/v1/calendar/matrix?from=2025-09-01&to=2025-09-30
func (h *CalendarHandler) Matrix(c *gin.Context) {
	var req dto.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	matrix, err := h.calendarSvc.Matrix(c.Request.Context(), req.From, req.To)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	response.OK(c, matrix)
}

// ExportMatrix 矩阵导出为 Excel
// GET /api/v1/calendar/matrix.xlsx?from=2025-09-01&to=2025-09-30
func (h *CalendarHandler) ExportMatrix(c *gin.Context) {
	var req dto.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := h.calendarSvc.ExportMatrix(c.Request.Context(), req.From, req.To)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.FileName, file.Data)
}

// ExportICS 课程场次导出为 iCalendar
// GET /api/v1/courses/:id/calendar.ics
func (h *CalendarHandler) ExportICS(c *gin.Context) {
	file, err := h.calendarSvc.ExportICS(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.FileName, file.Data)
}

// Holidays 年度节假日
// GET /api/v1/calendar/holidays?year=2025
func (h *CalendarHandler) Holidays(c *gin.Context) {
	var req dto.HolidaysRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	response.OK(c, gin.H{"year": req.Year, "list": h.calendarSvc.Holidays(req.Year)})
}

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 17001, "日期格式无效")
	case errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 17002, "开始日期不能晚于结束日期")
	case errors.Is(err, service.ErrRangeTooLarge):
		response.BadRequest(c, 17003, "日期区间不能超过 366 天")
	default:
		response.InternalError(c)
	}
}
