package model

import "gorm.io/gorm"

// 学员状态
const (
	StatusEnrolled = "enrolled"
	StatusApproved = "approved"
	StatusFailed   = "failed"
)

// 通过标准：出勤率 ≥ 50 且成绩 ≥ 4.0（1–7 分制）
const (
	MinApprovalAttendance = 50.0
	MinApprovalGrade      = 4.0
)

// Participant 学员报名表，对应 participants
type Participant struct {
	ParticipantID string   `gorm:"type:varchar(36);primaryKey"                  json:"participant_id"`
	SessionID     string   `gorm:"type:varchar(36);not null;index;uniqueIndex:uk_participant_session_nid,priority:1" json:"session_id"`
	CourseID      string   `gorm:"type:varchar(36);not null;index"              json:"course_id"`
	SeatID        *string  `gorm:"type:varchar(36)"                             json:"seat_id,omitempty"`
	Name          string   `gorm:"type:varchar(150);not null"                   json:"name"`
	NationalID    string   `gorm:"type:varchar(20);not null;index;uniqueIndex:uk_participant_session_nid,priority:2" json:"national_id"`
	Company       string   `gorm:"type:varchar(150)"                            json:"company,omitempty"`
	Attendance    *float64 `json:"attendance,omitempty"` // 0–100
	Grade         *float64 `json:"grade,omitempty"`      // 1.0–7.0
	Status        string   `gorm:"type:varchar(20);not null;default:'enrolled'" json:"status"`
	VersionedModel

	// 关联
	Session *Session `gorm:"foreignKey:SessionID;references:SessionID" json:"session,omitempty"`
}

// TableName 指定表名
func (Participant) TableName() string { return "participants" }

// BeforeCreate 生成主键并计算状态
func (p *Participant) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ParticipantID)
	if p.Version == 0 {
		p.Version = 1
	}
	p.Refresh()
	return nil
}

// Refresh 按出勤率与成绩重新计算状态；状态不允许单独修改
func (p *Participant) Refresh() {
	p.Status = ApprovalStatus(p.Attendance, p.Grade)
}

// IsApproved 是否已通过
func (p *Participant) IsApproved() bool {
	return ApprovalStatus(p.Attendance, p.Grade) == StatusApproved
}

// ApprovalStatus 由出勤率与成绩推导学员状态
// 任一项未录入时为 enrolled
func ApprovalStatus(attendance, grade *float64) string {
	if attendance == nil || grade == nil {
		return StatusEnrolled
	}
	if *attendance >= MinApprovalAttendance && *grade >= MinApprovalGrade {
		return StatusApproved
	}
	return StatusFailed
}
