package model

import (
	"time"

	"gorm.io/gorm"
)

// 授课方式
const (
	ModalityInPerson = "in-person"
	ModalityRemote   = "remote"
)

// Course 课程表，对应 courses
type Course struct {
	CourseID      string    `gorm:"type:varchar(36);primaryKey"      json:"course_id"`
	Code          string    `gorm:"type:varchar(30);not null;index"  json:"code"`
	Name          string    `gorm:"type:varchar(200);not null"       json:"name"`
	DurationHours int       `gorm:"not null"                         json:"duration_hours"`
	StartDate     time.Time `gorm:"type:date;not null"               json:"start_date"`
	EndDate       time.Time `gorm:"type:date;not null"               json:"end_date"`
	StartTime     string    `gorm:"type:varchar(5)"                  json:"start_time,omitempty"` // HH:MM，可空
	EndTime       string    `gorm:"type:varchar(5)"                  json:"end_time,omitempty"`
	Modality      string    `gorm:"type:varchar(20);not null"        json:"modality"` // in-person | remote
	Instructor    string    `gorm:"type:varchar(100)"                json:"instructor,omitempty"`
	Objectives    string    `gorm:"type:text"                        json:"objectives,omitempty"`
	BaseModel

	// 关联
	Sessions []Session `gorm:"foreignKey:CourseID" json:"sessions,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// BeforeCreate 生成主键
func (c *Course) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.CourseID)
	return nil
}

// ValidModality 判断授课方式是否合法
func ValidModality(m string) bool {
	return m == ModalityInPerson || m == ModalityRemote
}

// ModalityLabel 授课方式的展示文案
func ModalityLabel(m string) string {
	switch m {
	case ModalityInPerson:
		return "Presencial"
	case ModalityRemote:
		return "Remota"
	default:
		return m
	}
}
