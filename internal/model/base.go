package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(36)"                   json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(36)"                   json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"            json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:varchar(36)" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的审计字段
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// ensureID 主键为空时生成 UUID
// 主键在应用侧生成，PostgreSQL 与 SQLite 共用同一套模型
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}
