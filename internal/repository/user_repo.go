package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/internal/model"
	pkgerrors "github.com/maikostudios/SustentaM-sub001/pkg/errors"
)

const tableUsers = "users"

// UserRepository 账号数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return pkgerrors.Wrap("create", tableUsers, r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, pkgerrors.Wrap("get", tableUsers, err)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, pkgerrors.Wrap("get", tableUsers, err)
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap("count", tableUsers, err)
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, pkgerrors.Wrap("list", tableUsers, err)
	}

	return users, total, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error
	return total, pkgerrors.Wrap("count", tableUsers, err)
}

func (r *userRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return pkgerrors.Wrap("delete", tableUsers, r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("user_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&model.User{}).Error
	}))
}
