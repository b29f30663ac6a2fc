package model

import "gorm.io/gorm"

// 角色
const (
	RoleAdmin      = "admin"
	RoleContractor = "contractor"
	RoleUser       = "user"
)

// User 仪表盘账号表，对应 users
type User struct {
	UserID       string `gorm:"type:varchar(36);primaryKey"            json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"             json:"name"`
	Email        string `gorm:"type:varchar(255);not null;index"       json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"             json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'user'" json:"role"` // admin | contractor | user
	Company      string `gorm:"type:varchar(150)"                      json:"company,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}
