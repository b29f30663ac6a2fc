package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User        UserRepository
	Course      CourseRepository
	Session     SessionRepository
	Seat        SeatRepository
	Participant ParticipantRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Course:      NewCourseRepo(db),
		Session:     NewSessionRepo(db),
		Seat:        NewSeatRepo(db),
		Participant: NewParticipantRepo(db),
	}
}

// Transaction 在同一事务中执行 fn，fn 收到绑定事务连接的 Repository
// fn 返回错误时回滚；未绑定数据库（单元测试注入 mock）时直接执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
