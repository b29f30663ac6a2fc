package dto

import "github.com/maikostudios/SustentaM-sub001/internal/calendar"

// ── 日历模块 DTO ──

// MonthRequest 月视图查询参数
type MonthRequest struct {
	Year  int `form:"year"  binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// RangeRequest 日期区间查询参数
type RangeRequest struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to"   binding:"required,datetime=2006-01-02"`
}

// HolidaysRequest 节假日查询参数
type HolidaysRequest struct {
	Year int `form:"year" binding:"required,min=2000,max=2100"`
}

// CalendarSession 日历中的场次摘要
type CalendarSession struct {
	SessionID  string `json:"session_id"`
	CourseID   string `json:"course_id"`
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Modality   string `json:"modality"`
	Capacity   int    `json:"capacity"`
	Occupied   int    `json:"occupied"`
}

// CalendarDay 月视图中的一天
type CalendarDay struct {
	calendar.Day
	Sessions []CalendarSession `json:"sessions"`
}

// MonthResponse 月视图
type MonthResponse struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Weeks [][7]CalendarDay `json:"weeks"`
}

// MatrixRow 课程 × 日期矩阵中的一行
type MatrixRow struct {
	CourseID   string `json:"course_id"`
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Modality   string `json:"modality"`
	// Cells 与 MatrixResponse.Days 一一对应，无场次时为 nil
	Cells []*CalendarSession `json:"cells"`
}

// MatrixResponse 多课程日历矩阵
type MatrixResponse struct {
	Days []calendar.Day `json:"days"`
	Rows []MatrixRow    `json:"rows"`
}
