package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/internal/model"
	pkgerrors "github.com/maikostudios/SustentaM-sub001/pkg/errors"
)

const (
	tableSessions = "sessions"
	tableSeats    = "seats"
	batchSize     = 500
)

// SessionRepository 场次数据访问接口
type SessionRepository interface {
	BatchCreate(ctx context.Context, sessions []model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Session, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.Session, error)
	DeleteByCourse(ctx context.Context, courseID string) error
}

// SeatRepository 座位数据访问接口
type SeatRepository interface {
	BatchCreate(ctx context.Context, seats []model.Seat) error
	ListBySession(ctx context.Context, sessionID string) ([]model.Seat, error)
	// CountOccupied 按场次统计已占用座位数
	CountOccupied(ctx context.Context, sessionIDs []string) (map[string]int, error)
	// Occupy 仅当座位仍空闲时占用，否则返回 ErrOptimisticLock
	Occupy(ctx context.Context, seatID, participantID string) error
	Release(ctx context.Context, seatID string) error
	DeleteBySessions(ctx context.Context, sessionIDs []string) error
}

// ── Session Repository 实现 ──

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

// BatchCreate 只写入场次本身，座位由 SeatRepository 写入
func (r *sessionRepo) BatchCreate(ctx context.Context, sessions []model.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	return pkgerrors.Wrap("batch_create", tableSessions, r.db.WithContext(ctx).
		Omit("Seats", "Course").
		CreateInBatches(sessions, batchSize).Error)
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Seats", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, pkgerrors.Wrap("get", tableSessions, err)
	}
	return &session, nil
}

func (r *sessionRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("date ASC").
		Find(&sessions).Error
	return sessions, pkgerrors.Wrap("list", tableSessions, err)
}

func (r *sessionRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&sessions).Error
	return sessions, pkgerrors.Wrap("list", tableSessions, err)
}

func (r *sessionRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return pkgerrors.Wrap("delete", tableSessions, r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.Session{}).Error)
}

// ── Seat Repository 实现 ──

type seatRepo struct {
	db *gorm.DB
}

func NewSeatRepo(db *gorm.DB) SeatRepository {
	return &seatRepo{db: db}
}

func (r *seatRepo) BatchCreate(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	return pkgerrors.Wrap("batch_create", tableSeats, r.db.WithContext(ctx).
		CreateInBatches(seats, batchSize).Error)
}

func (r *seatRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Seat, error) {
	var seats []model.Seat
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("number ASC").
		Find(&seats).Error
	return seats, pkgerrors.Wrap("list", tableSeats, err)
}

func (r *seatRepo) CountOccupied(ctx context.Context, sessionIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		SessionID string
		Occupied  int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Seat{}).
		Select("session_id, COUNT(*) AS occupied").
		Where("session_id IN ? AND status = ?", sessionIDs, model.SeatOccupied).
		Group("session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap("count", tableSeats, err)
	}
	for _, row := range rows {
		result[row.SessionID] = row.Occupied
	}
	return result, nil
}

func (r *seatRepo) Occupy(ctx context.Context, seatID, participantID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Seat{}).
		Where("seat_id = ? AND status = ?", seatID, model.SeatFree).
		Updates(map[string]interface{}{
			"status":         model.SeatOccupied,
			"participant_id": participantID,
		})
	if result.Error != nil {
		return pkgerrors.Wrap("occupy", tableSeats, result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *seatRepo) Release(ctx context.Context, seatID string) error {
	return pkgerrors.Wrap("release", tableSeats, r.db.WithContext(ctx).
		Model(&model.Seat{}).
		Where("seat_id = ?", seatID).
		Updates(map[string]interface{}{
			"status":         model.SeatFree,
			"participant_id": nil,
		}).Error)
}

func (r *seatRepo) DeleteBySessions(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	return pkgerrors.Wrap("delete", tableSeats, r.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Delete(&model.Seat{}).Error)
}
