package dto

// ── 报表模块 DTO ──

// CourseSummary 单门课程统计
type CourseSummary struct {
	CourseID          string   `json:"course_id"`
	CourseCode        string   `json:"course_code"`
	CourseName        string   `json:"course_name"`
	Modality          string   `json:"modality"`
	Sessions          int      `json:"sessions"`
	Enrolled          int      `json:"enrolled"` // 报名总人数
	Approved          int      `json:"approved"`
	Failed            int      `json:"failed"`
	Pending           int      `json:"pending"` // 尚未录入成绩
	AverageAttendance *float64 `json:"average_attendance,omitempty"`
	AverageGrade      *float64 `json:"average_grade,omitempty"`
	ApprovalRate      float64  `json:"approval_rate"` // 已评定学员中的通过比例，0–100
	SeatCapacity      int      `json:"seat_capacity"`
	SeatsOccupied     int      `json:"seats_occupied"`
	OccupancyRate     float64  `json:"occupancy_rate"` // 0–100
}

// OverviewResponse 全部课程统计
type OverviewResponse struct {
	Courses       int             `json:"courses"`
	InPerson      int             `json:"in_person"`
	Remote        int             `json:"remote"`
	Participants  int             `json:"participants"`
	Approved      int             `json:"approved"`
	Failed        int             `json:"failed"`
	Pending       int             `json:"pending"`
	ApprovalRate  float64         `json:"approval_rate"`
	CourseSummary []CourseSummary `json:"course_summaries"`
}
