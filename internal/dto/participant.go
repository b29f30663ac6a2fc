package dto

// ── 学员模块 DTO ──

// EnrollRequest 报名请求
type EnrollRequest struct {
	Name       string `json:"name"        binding:"required,max=150"`
	NationalID string `json:"national_id" binding:"required,max=20"`
	Company    string `json:"company"     binding:"omitempty,max=150"` // 承包商账号以自身公司为准
}

// RecordResultsRequest 录入出勤与成绩
// 状态由两者推导，不接受直接修改
type RecordResultsRequest struct {
	Attendance *float64 `json:"attendance" binding:"omitempty,gte=0,lte=100"`
	Grade      *float64 `json:"grade"      binding:"omitempty,gte=1,lte=7"`
	Version    int      `json:"version"    binding:"omitempty,min=1"` // 乐观锁：客户端读取时的版本
}

// ParticipantResponse 学员信息
type ParticipantResponse struct {
	ID         string   `json:"id"`
	SessionID  string   `json:"session_id"`
	CourseID   string   `json:"course_id"`
	SeatID     *string  `json:"seat_id,omitempty"`
	SeatNumber int      `json:"seat_number,omitempty"`
	Name       string   `json:"name"`
	NationalID string   `json:"national_id"`
	Company    string   `json:"company,omitempty"`
	Attendance *float64 `json:"attendance,omitempty"`
	Grade      *float64 `json:"grade,omitempty"`
	Status     string   `json:"status"`
	Version    int      `json:"version"`
}
