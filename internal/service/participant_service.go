package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
	"github.com/maikostudios/SustentaM-sub001/internal/scheduling"
	pkgerrors "github.com/maikostudios/SustentaM-sub001/pkg/errors"
)

// ── 学员模块业务错误 ──

var (
	ErrParticipantNotFound = errors.New("学员不存在")
	ErrSessionFull         = errors.New("场次已满，没有空闲座位")
	ErrDuplicateEnrollment = errors.New("该证件号已报名此场次")
	ErrCompanyForbidden    = errors.New("只能管理本公司的学员")
	ErrInvalidResults      = errors.New("出勤率应在 0–100 之间，成绩应在 1.0–7.0 之间")
)

// ParticipantService 学员报名与成绩业务接口
type ParticipantService interface {
	// Enroll 报名并占用编号最小的空闲座位
	Enroll(ctx context.Context, sessionID string, req *dto.EnrollRequest, caller dto.Caller) (*dto.ParticipantResponse, error)
	// RecordResults 录入出勤与成绩，状态随之重算
	RecordResults(ctx context.Context, id string, req *dto.RecordResultsRequest, caller dto.Caller) (*dto.ParticipantResponse, error)
	// Unenroll 取消报名并释放座位
	Unenroll(ctx context.Context, id string, caller dto.Caller) error
	ListBySession(ctx context.Context, sessionID string, caller dto.Caller) ([]dto.ParticipantResponse, error)
	ListByCourse(ctx context.Context, courseID string, caller dto.Caller) ([]dto.ParticipantResponse, error)
}

type participantService struct {
	repo            *repository.Repository
	enforceCapacity bool
	logger          *zap.Logger
}

// NewParticipantService 创建 ParticipantService 实例
func NewParticipantService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ParticipantService {
	return &participantService{
		repo:            repo,
		enforceCapacity: cfg.Enrollment.EnforceCapacity,
		logger:          logger,
	}
}

// ────────────────────── Enroll ──────────────────────

func (s *participantService) Enroll(ctx context.Context, sessionID string, req *dto.EnrollRequest, caller dto.Caller) (*dto.ParticipantResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询场次失败", zap.String("id", sessionID), zap.Error(err))
		return nil, err
	}

	company := strings.TrimSpace(req.Company)
	if caller.IsContractor() {
		if company != "" && !strings.EqualFold(company, caller.Company) {
			return nil, ErrCompanyForbidden
		}
		company = caller.Company
	}
	nationalID := normalizeNationalID(req.NationalID)

	// 同一场次内证件号唯一
	if _, err := s.repo.Participant.GetBySessionAndNationalID(ctx, sessionID, nationalID); err == nil {
		return nil, ErrDuplicateEnrollment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学员失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	p := &model.Participant{
		ParticipantID: uuid.NewString(),
		SessionID:     sessionID,
		CourseID:      session.CourseID,
		Name:          strings.TrimSpace(req.Name),
		NationalID:    nationalID,
		Company:       company,
	}
	p.CreatedBy = &caller.UserID
	p.UpdatedBy = &caller.UserID

	seatNumber := 0
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		seats, err := tx.Seat.ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		for {
			seat := scheduling.FirstFreeSeat(seats)
			if seat == nil {
				if s.enforceCapacity {
					return ErrSessionFull
				}
				break
			}
			err := tx.Seat.Occupy(ctx, seat.SeatID, p.ParticipantID)
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				// 座位已被并发占用，尝试下一个
				seat.Status = model.SeatOccupied
				continue
			}
			if err != nil {
				return err
			}
			p.SeatID = &seat.SeatID
			seatNumber = seat.Number
			break
		}
		return tx.Participant.Create(ctx, p)
	})
	if err != nil {
		// 并发报名时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEnrollment
		}
		if !errors.Is(err, ErrSessionFull) {
			s.logger.Error("报名失败", zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, err
	}

	if p.SeatID == nil {
		s.logger.Warn("场次已满，学员未分配座位", zap.String("session_id", sessionID), zap.String("participant_id", p.ParticipantID))
	}
	resp := toParticipantResponse(p)
	resp.SeatNumber = seatNumber
	return resp, nil
}

// ────────────────────── RecordResults ──────────────────────

func (s *participantService) RecordResults(ctx context.Context, id string, req *dto.RecordResultsRequest, caller dto.Caller) (*dto.ParticipantResponse, error) {
	p, err := s.getVisible(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != p.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}
	if !validResults(req.Attendance, req.Grade) {
		return nil, ErrInvalidResults
	}

	if req.Attendance != nil {
		p.Attendance = req.Attendance
	}
	if req.Grade != nil {
		p.Grade = req.Grade
	}
	p.Refresh()
	p.UpdatedBy = &caller.UserID

	if err := s.repo.Participant.UpdateResults(ctx, p); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新学员成绩失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return toParticipantResponse(p), nil
}

// ────────────────────── Unenroll ──────────────────────

func (s *participantService) Unenroll(ctx context.Context, id string, caller dto.Caller) error {
	p, err := s.getVisible(ctx, id, caller)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Participant.Delete(ctx, id); err != nil {
			return err
		}
		if p.SeatID != nil {
			return tx.Seat.Release(ctx, *p.SeatID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("取消报名失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── List ──────────────────────

func (s *participantService) ListBySession(ctx context.Context, sessionID string, caller dto.Caller) ([]dto.ParticipantResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询场次失败", zap.String("id", sessionID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Participant.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("列出学员失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	seatNumbers := make(map[string]int, len(session.Seats))
	for _, seat := range session.Seats {
		seatNumbers[seat.SeatID] = seat.Number
	}

	result := make([]dto.ParticipantResponse, 0, len(list))
	for i := range list {
		if !visibleTo(&list[i], caller) {
			continue
		}
		resp := toParticipantResponse(&list[i])
		if list[i].SeatID != nil {
			resp.SeatNumber = seatNumbers[*list[i].SeatID]
		}
		result = append(result, *resp)
	}
	return result, nil
}

func (s *participantService) ListByCourse(ctx context.Context, courseID string, caller dto.Caller) ([]dto.ParticipantResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Participant.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出学员失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ParticipantResponse, 0, len(list))
	for i := range list {
		if visibleTo(&list[i], caller) {
			result = append(result, *toParticipantResponse(&list[i]))
		}
	}
	return result, nil
}

// ── 辅助函数 ──

// getVisible 查询学员并校验承包商的公司范围
func (s *participantService) getVisible(ctx context.Context, id string, caller dto.Caller) (*model.Participant, error) {
	p, err := s.repo.Participant.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		s.logger.Error("查询学员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !visibleTo(p, caller) {
		return nil, ErrCompanyForbidden
	}
	return p, nil
}

// visibleTo 承包商只能看到本公司学员
func visibleTo(p *model.Participant, caller dto.Caller) bool {
	return !caller.IsContractor() || strings.EqualFold(p.Company, caller.Company)
}

func validResults(attendance, grade *float64) bool {
	if attendance != nil && (*attendance < 0 || *attendance > 100) {
		return false
	}
	if grade != nil && (*grade < 1 || *grade > 7) {
		return false
	}
	return true
}

// normalizeNationalID 去除空白并统一大写（RUT 校验位可能为 k/K）
func normalizeNationalID(id string) string {
	return strings.ToUpper(strings.Join(strings.Fields(id), ""))
}

func toParticipantResponse(p *model.Participant) *dto.ParticipantResponse {
	return &dto.ParticipantResponse{
		ID:         p.ParticipantID,
		SessionID:  p.SessionID,
		CourseID:   p.CourseID,
		SeatID:     p.SeatID,
		Name:       p.Name,
		NationalID: p.NationalID,
		Company:    p.Company,
		Attendance: p.Attendance,
		Grade:      p.Grade,
		Status:     p.Status,
		Version:    p.Version,
	}
}
