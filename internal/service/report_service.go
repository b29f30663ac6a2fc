package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
)

// ReportService 统计报表业务接口（仪表盘图表的数据来源）
type ReportService interface {
	CourseSummary(ctx context.Context, courseID string) (*dto.CourseSummary, error)
	Overview(ctx context.Context) (*dto.OverviewResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) CourseSummary(ctx context.Context, courseID string) (*dto.CourseSummary, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}
	return s.summarize(ctx, course)
}

func (s *reportService) Overview(ctx context.Context) (*dto.OverviewResponse, error) {
	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{})
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.OverviewResponse{
		Courses:       len(courses),
		CourseSummary: make([]dto.CourseSummary, 0, len(courses)),
	}
	for i := range courses {
		summary, err := s.summarize(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
		if courses[i].Modality == model.ModalityRemote {
			resp.Remote++
		} else {
			resp.InPerson++
		}
		resp.Participants += summary.Enrolled
		resp.Approved += summary.Approved
		resp.Failed += summary.Failed
		resp.Pending += summary.Pending
		resp.CourseSummary = append(resp.CourseSummary, *summary)
	}
	resp.ApprovalRate = percent(resp.Approved, resp.Approved+resp.Failed)
	return resp, nil
}

// summarize 汇总单门课程的学员结果与座位占用
func (s *reportService) summarize(ctx context.Context, course *model.Course) (*dto.CourseSummary, error) {
	participants, err := s.repo.Participant.ListByCourse(ctx, course.CourseID)
	if err != nil {
		s.logger.Error("列出学员失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}
	sessions, err := s.repo.Session.ListByCourse(ctx, course.CourseID)
	if err != nil {
		s.logger.Error("查询场次失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}
	occupied, err := countOccupied(ctx, s.repo, sessions)
	if err != nil {
		s.logger.Error("统计座位占用失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}

	summary := &dto.CourseSummary{
		CourseID:   course.CourseID,
		CourseCode: course.Code,
		CourseName: course.Name,
		Modality:   course.Modality,
		Sessions:   len(sessions),
		Enrolled:   len(participants),
	}

	var attSum, gradeSum float64
	var attN, gradeN int
	for i := range participants {
		p := &participants[i]
		switch model.ApprovalStatus(p.Attendance, p.Grade) {
		case model.StatusApproved:
			summary.Approved++
		case model.StatusFailed:
			summary.Failed++
		default:
			summary.Pending++
		}
		if p.Attendance != nil {
			attSum += *p.Attendance
			attN++
		}
		if p.Grade != nil {
			gradeSum += *p.Grade
			gradeN++
		}
	}
	if attN > 0 {
		v := round1(attSum / float64(attN))
		summary.AverageAttendance = &v
	}
	if gradeN > 0 {
		v := round1(gradeSum / float64(gradeN))
		summary.AverageGrade = &v
	}
	summary.ApprovalRate = percent(summary.Approved, summary.Approved+summary.Failed)

	for _, session := range sessions {
		summary.SeatCapacity += session.Capacity
		summary.SeatsOccupied += occupied[session.SessionID]
	}
	summary.OccupancyRate = percent(summary.SeatsOccupied, summary.SeatCapacity)
	return summary, nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) * 100 / float64(total))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
