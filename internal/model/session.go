package model

import (
	"time"

	"gorm.io/gorm"
)

// 座位状态
const (
	SeatFree     = "free"
	SeatOccupied = "occupied"
)

// Session 课程场次表，对应 sessions（一个场次即一个日历日）
type Session struct {
	SessionID string    `gorm:"type:varchar(36);primaryKey"     json:"session_id"`
	CourseID  string    `gorm:"type:varchar(36);not null;index" json:"course_id"`
	Date      time.Time `gorm:"type:date;not null;index"        json:"date"`
	StartTime string    `gorm:"type:varchar(5)"                 json:"start_time,omitempty"`
	EndTime   string    `gorm:"type:varchar(5)"                 json:"end_time,omitempty"`
	Capacity  int       `gorm:"not null"                        json:"capacity"` // 创建时按授课方式确定，之后不再变化
	BaseModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
	Seats  []Seat  `gorm:"foreignKey:SessionID"                    json:"seats,omitempty"`
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }

// BeforeCreate 生成主键
func (s *Session) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.SessionID)
	return nil
}

// Seat 座位表，对应 seats
// 座位在生成场次时一次性预分配，数量等于场次容量；占用情况以座位记录为唯一数据源
type Seat struct {
	SeatID        string  `gorm:"type:varchar(36);primaryKey"              json:"seat_id"`
	SessionID     string  `gorm:"type:varchar(36);not null;index"          json:"session_id"`
	Number        int     `gorm:"not null"                                 json:"number"` // 1..capacity
	Status        string  `gorm:"type:varchar(10);not null;default:'free'" json:"status"` // free | occupied
	ParticipantID *string `gorm:"type:varchar(36)"                         json:"participant_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Seat) TableName() string { return "seats" }

// BeforeCreate 生成主键
func (s *Seat) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.SeatID)
	return nil
}

// IsFree 座位是否空闲
func (s *Seat) IsFree() bool { return s.Status == SeatFree }
