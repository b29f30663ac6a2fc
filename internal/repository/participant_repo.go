package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/internal/model"
	pkgerrors "github.com/maikostudios/SustentaM-sub001/pkg/errors"
)

const tableParticipants = "participants"

// ParticipantRepository 学员报名数据访问接口
type ParticipantRepository interface {
	Create(ctx context.Context, p *model.Participant) error
	GetByID(ctx context.Context, id string) (*model.Participant, error)
	GetBySessionAndNationalID(ctx context.Context, sessionID, nationalID string) (*model.Participant, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Participant, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Participant, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	// UpdateResults 写入出勤、成绩与重算后的状态，版本不一致时返回 ErrOptimisticLock
	UpdateResults(ctx context.Context, p *model.Participant) error
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

type participantRepo struct {
	db *gorm.DB
}

// NewParticipantRepo 创建 ParticipantRepository 实例
func NewParticipantRepo(db *gorm.DB) ParticipantRepository {
	return &participantRepo{db: db}
}

func (r *participantRepo) Create(ctx context.Context, p *model.Participant) error {
	return pkgerrors.Wrap("create", tableParticipants, r.db.WithContext(ctx).Omit("Session").Create(p).Error)
}

func (r *participantRepo) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	var p model.Participant
	err := r.db.WithContext(ctx).
		Preload("Session").
		Where("participant_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, pkgerrors.Wrap("get", tableParticipants, err)
	}
	return &p, nil
}

func (r *participantRepo) GetBySessionAndNationalID(ctx context.Context, sessionID, nationalID string) (*model.Participant, error) {
	var p model.Participant
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND national_id = ?", sessionID, nationalID).
		First(&p).Error
	if err != nil {
		return nil, pkgerrors.Wrap("get", tableParticipants, err)
	}
	return &p, nil
}

func (r *participantRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Participant, error) {
	var list []model.Participant
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, pkgerrors.Wrap("list", tableParticipants, err)
}

func (r *participantRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Participant, error) {
	var list []model.Participant
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&list).Error
	return list, pkgerrors.Wrap("list", tableParticipants, err)
}

func (r *participantRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("course_id = ?", courseID).
		Count(&total).Error
	return total, pkgerrors.Wrap("count", tableParticipants, err)
}

func (r *participantRepo) UpdateResults(ctx context.Context, p *model.Participant) error {
	oldVersion := p.Version
	result := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("participant_id = ? AND version = ?", p.ParticipantID, oldVersion).
		Updates(map[string]interface{}{
			"attendance": p.Attendance,
			"grade":      p.Grade,
			"status":     p.Status,
			"updated_by": p.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return pkgerrors.Wrap("update", tableParticipants, result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version = oldVersion + 1
	return nil
}

func (r *participantRepo) Delete(ctx context.Context, id string) error {
	return pkgerrors.Wrap("delete", tableParticipants, r.db.WithContext(ctx).
		Where("participant_id = ?", id).
		Delete(&model.Participant{}).Error)
}

func (r *participantRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return pkgerrors.Wrap("delete", tableParticipants, r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.Participant{}).Error)
}
