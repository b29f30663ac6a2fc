package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
	"github.com/maikostudios/SustentaM-sub001/internal/scheduling"
)

var ErrSessionNotFound = errors.New("场次不存在")

// SessionService 场次查询业务接口
// 场次只由课程排期生成，不单独创建或修改
type SessionService interface {
	ListByCourse(ctx context.Context, courseID string) ([]dto.SessionResponse, error)
	Get(ctx context.Context, id string) (*dto.SessionDetailResponse, error)
}

type sessionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, logger: logger}
}

func (s *sessionService) ListByCourse(ctx context.Context, courseID string) ([]dto.SessionResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}

	sessions, err := s.repo.Session.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询场次失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return sessionResponses(ctx, s.repo, sessions)
}

func (s *sessionService) Get(ctx context.Context, id string) (*dto.SessionDetailResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询场次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	seats := make([]dto.SeatResponse, 0, len(session.Seats))
	for _, seat := range session.Seats {
		seats = append(seats, dto.SeatResponse{
			ID:            seat.SeatID,
			Number:        seat.Number,
			Status:        seat.Status,
			ParticipantID: seat.ParticipantID,
		})
	}

	resp := &dto.SessionDetailResponse{
		SessionResponse: toSessionResponse(session, scheduling.SessionOccupancy(session)),
		Seats:           seats,
	}
	if session.Course != nil {
		resp.Course = toCourseResponse(session.Course, 0)
	}
	return resp, nil
}

// ── 辅助函数 ──

// sessionResponses 批量统计占用情况并转换为响应
func sessionResponses(ctx context.Context, repo *repository.Repository, sessions []model.Session) ([]dto.SessionResponse, error) {
	occupied, err := countOccupied(ctx, repo, sessions)
	if err != nil {
		return nil, err
	}

	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toSessionResponse(&sessions[i], scheduling.NewOccupancy(sessions[i].Capacity, occupied[sessions[i].SessionID])))
	}
	return result, nil
}

func countOccupied(ctx context.Context, repo *repository.Repository, sessions []model.Session) (map[string]int, error) {
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.SessionID)
	}
	return repo.Seat.CountOccupied(ctx, ids)
}

func toSessionResponse(s *model.Session, occ scheduling.Occupancy) dto.SessionResponse {
	return dto.SessionResponse{
		ID:        s.SessionID,
		CourseID:  s.CourseID,
		Date:      s.Date.Format(dateLayout),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Occupancy: occ,
	}
}
