package dto

import "github.com/maikostudios/SustentaM-sub001/internal/scheduling"

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Code          string `json:"code"           binding:"required,max=30"`
	Name          string `json:"name"           binding:"required,max=200"`
	DurationHours int    `json:"duration_hours" binding:"required,min=1,max=1000"`
	StartDate     string `json:"start_date"     binding:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date"       binding:"required,datetime=2006-01-02"`
	StartTime     string `json:"start_time"     binding:"omitempty,datetime=15:04"`
	EndTime       string `json:"end_time"       binding:"omitempty,datetime=15:04"`
	Modality      string `json:"modality"       binding:"required,oneof=in-person remote"`
	Instructor    string `json:"instructor"     binding:"omitempty,max=100"`
	Objectives    string `json:"objectives"`
}

// UpdateCourseRequest 更新课程请求（字段均可选）
// 日期、时间与授课方式只能在尚无学员报名时修改，修改后重新生成场次
type UpdateCourseRequest struct {
	Code          *string `json:"code"           binding:"omitempty,max=30"`
	Name          *string `json:"name"           binding:"omitempty,max=200"`
	DurationHours *int    `json:"duration_hours" binding:"omitempty,min=1,max=1000"`
	StartDate     *string `json:"start_date"     binding:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date"       binding:"omitempty,datetime=2006-01-02"`
	StartTime     *string `json:"start_time"     binding:"omitempty,datetime=15:04"`
	EndTime       *string `json:"end_time"       binding:"omitempty,datetime=15:04"`
	Modality      *string `json:"modality"       binding:"omitempty,oneof=in-person remote"`
	Instructor    *string `json:"instructor"     binding:"omitempty,max=100"`
	Objectives    *string `json:"objectives"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	Modality string `form:"modality" binding:"omitempty,oneof=in-person remote"`
	Keyword  string `form:"keyword"  binding:"omitempty,max=50"`
}

// CourseResponse 课程信息
type CourseResponse struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	DurationHours int    `json:"duration_hours"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	StartTime     string `json:"start_time,omitempty"`
	EndTime       string `json:"end_time,omitempty"`
	Modality      string `json:"modality"`
	ModalityLabel string `json:"modality_label"`
	Capacity      int    `json:"capacity"` // 每个场次的容量
	Instructor    string `json:"instructor,omitempty"`
	Objectives    string `json:"objectives,omitempty"`
	SessionCount  int    `json:"session_count"`
}

// CourseDetailResponse 课程详情（含场次与占用情况）
type CourseDetailResponse struct {
	CourseResponse
	Sessions []SessionResponse `json:"sessions"`
}

// ── 场次模块 DTO ──

// SessionResponse 场次信息
type SessionResponse struct {
	ID        string               `json:"id"`
	CourseID  string               `json:"course_id"`
	Date      string               `json:"date"`
	StartTime string               `json:"start_time,omitempty"`
	EndTime   string               `json:"end_time,omitempty"`
	Occupancy scheduling.Occupancy `json:"occupancy"`
}

// SeatResponse 座位信息
type SeatResponse struct {
	ID            string  `json:"id"`
	Number        int     `json:"number"`
	Status        string  `json:"status"`
	ParticipantID *string `json:"participant_id,omitempty"`
}

// SessionDetailResponse 场次详情（含座位图）
type SessionDetailResponse struct {
	SessionResponse
	Course *CourseResponse `json:"course,omitempty"`
	Seats  []SeatResponse  `json:"seats"`
}
