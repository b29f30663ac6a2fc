package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
	"github.com/maikostudios/SustentaM-sub001/internal/scheduling"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound       = errors.New("课程不存在")
	ErrInvalidModality      = errors.New("授课方式无效")
	ErrInvalidDate          = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidTimeRange     = errors.New("结束时间必须晚于开始时间")
	ErrCourseScheduleLocked = errors.New("课程已有学员报名，不能修改日期、时间或授课方式")
	ErrCourseSpanTooLarge   = errors.New("课程日期跨度超过上限")
)

const (
	dateLayout = "2006-01-02"

	// defaultMaxCourseDays 未配置 calendar.max_course_days 时的跨度上限
	defaultMaxCourseDays = 366
)

// CourseService 课程业务接口
type CourseService interface {
	// Create 创建课程，并在同一事务中生成场次与座位
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Get(ctx context.Context, id string) (*dto.CourseDetailResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	// Delete 删除课程及其场次、座位与学员
	Delete(ctx context.Context, id string) error
}

type courseService struct {
	repo    *repository.Repository
	opts    scheduling.Options
	maxDays int
	logger  *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) CourseService {
	maxDays := cfg.Calendar.MaxCourseDays
	if maxDays <= 0 {
		maxDays = defaultMaxCourseDays
	}
	return &courseService{
		repo:    repo,
		opts:    scheduling.Options{SkipHolidays: cfg.Calendar.SkipHolidaysInPerson},
		maxDays: maxDays,
		logger:  logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	if !model.ValidModality(req.Modality) {
		return nil, ErrInvalidModality
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := s.checkSpan(start, end); err != nil {
		return nil, err
	}

	course := &model.Course{
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		DurationHours: req.DurationHours,
		StartDate:     start,
		EndDate:       end,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Modality:      req.Modality,
		Instructor:    req.Instructor,
		Objectives:    req.Objectives,
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	var sessions []model.Session
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Course.Create(ctx, course); err != nil {
			return err
		}
		var genErr error
		sessions, genErr = s.generateSessions(ctx, tx, course)
		return genErr
	})
	if err != nil {
		s.logger.Error("创建课程失败", zap.String("code", course.Code), zap.Error(err))
		return nil, err
	}

	if len(sessions) == 0 {
		s.logger.Warn("课程日期区间内没有可用场次",
			zap.String("course_id", course.CourseID),
			zap.String("start", req.StartDate),
			zap.String("end", req.EndDate),
		)
	}
	s.logger.Info("已创建课程",
		zap.String("course_id", course.CourseID),
		zap.String("modality", course.Modality),
		zap.Int("sessions", len(sessions)),
	)
	return toCourseResponse(course, len(sessions)), nil
}

// ────────────────────── Get ──────────────────────

func (s *courseService) Get(ctx context.Context, id string) (*dto.CourseDetailResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	sessions, err := s.repo.Session.ListByCourse(ctx, id)
	if err != nil {
		s.logger.Error("查询场次失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	items, err := sessionResponses(ctx, s.repo, sessions)
	if err != nil {
		s.logger.Error("统计座位占用失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	return &dto.CourseDetailResponse{
		CourseResponse: *toCourseResponse(course, len(sessions)),
		Sessions:       items,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{
		Modality: req.Modality,
		Keyword:  strings.TrimSpace(req.Keyword),
	})
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		sessions, err := s.repo.Session.ListByCourse(ctx, courses[i].CourseID)
		if err != nil {
			s.logger.Error("查询场次失败", zap.String("course_id", courses[i].CourseID), zap.Error(err))
			return nil, err
		}
		result = append(result, *toCourseResponse(&courses[i], len(sessions)))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	// 描述性字段随时可改
	if req.Code != nil {
		course.Code = strings.TrimSpace(*req.Code)
	}
	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.DurationHours != nil {
		course.DurationHours = *req.DurationHours
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.Objectives != nil {
		course.Objectives = *req.Objectives
	}

	// 排期字段
	reschedule, err := applySchedule(course, req)
	if err != nil {
		return nil, err
	}
	if reschedule {
		if err := s.checkSpan(course.StartDate, course.EndDate); err != nil {
			return nil, err
		}
	}
	course.UpdatedBy = &callerID

	if reschedule {
		enrolled, err := s.repo.Participant.CountByCourse(ctx, id)
		if err != nil {
			s.logger.Error("统计课程学员失败", zap.String("course_id", id), zap.Error(err))
			return nil, err
		}
		if enrolled > 0 {
			return nil, ErrCourseScheduleLocked
		}
	}

	sessionCount := 0
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Course.Update(ctx, course); err != nil {
			return err
		}
		if reschedule {
			if err := deleteCourseSessions(ctx, tx, id); err != nil {
				return err
			}
			sessions, err := s.generateSessions(ctx, tx, course)
			sessionCount = len(sessions)
			return err
		}
		sessions, err := tx.Session.ListByCourse(ctx, id)
		sessionCount = len(sessions)
		return err
	})
	if err != nil {
		s.logger.Error("更新课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	if reschedule {
		s.logger.Info("课程排期已变更，场次已重新生成",
			zap.String("course_id", id),
			zap.Int("sessions", sessionCount),
		)
	}
	return toCourseResponse(course, sessionCount), nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string) error {
	if _, err := s.getCourse(ctx, id); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Participant.DeleteByCourse(ctx, id); err != nil {
			return err
		}
		if err := deleteCourseSessions(ctx, tx, id); err != nil {
			return err
		}
		return tx.Course.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除课程失败", zap.String("course_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("已删除课程", zap.String("course_id", id))
	return nil
}

// ── 辅助函数 ──

func (s *courseService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// generateSessions 生成并写入场次与座位
func (s *courseService) generateSessions(ctx context.Context, tx *repository.Repository, course *model.Course) ([]model.Session, error) {
	sessions := scheduling.Generate(course, s.opts)
	if len(sessions) == 0 {
		return nil, nil
	}

	seats := make([]model.Seat, 0, len(sessions)*sessions[0].Capacity)
	for i := range sessions {
		sessions[i].CreatedBy = course.UpdatedBy
		seats = append(seats, sessions[i].Seats...)
	}
	if err := tx.Session.BatchCreate(ctx, sessions); err != nil {
		return nil, err
	}
	if err := tx.Seat.BatchCreate(ctx, seats); err != nil {
		return nil, err
	}
	return sessions, nil
}

func deleteCourseSessions(ctx context.Context, tx *repository.Repository, courseID string) error {
	sessions, err := tx.Session.ListByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.SessionID)
	}
	if err := tx.Seat.DeleteBySessions(ctx, ids); err != nil {
		return err
	}
	return tx.Session.DeleteByCourse(ctx, courseID)
}

// applySchedule 应用排期字段，返回排期是否发生变化
func applySchedule(course *model.Course, req *dto.UpdateCourseRequest) (bool, error) {
	changed := false
	if req.Modality != nil && *req.Modality != course.Modality {
		if !model.ValidModality(*req.Modality) {
			return false, ErrInvalidModality
		}
		course.Modality = *req.Modality
		changed = true
	}
	if req.StartDate != nil {
		d, err := parseDate(*req.StartDate)
		if err != nil {
			return false, err
		}
		if !d.Equal(course.StartDate) {
			course.StartDate = d
			changed = true
		}
	}
	if req.EndDate != nil {
		d, err := parseDate(*req.EndDate)
		if err != nil {
			return false, err
		}
		if !d.Equal(course.EndDate) {
			course.EndDate = d
			changed = true
		}
	}
	if req.StartTime != nil && *req.StartTime != course.StartTime {
		course.StartTime = *req.StartTime
		changed = true
	}
	if req.EndTime != nil && *req.EndTime != course.EndTime {
		course.EndTime = *req.EndTime
		changed = true
	}
	if err := checkTimeRange(course.StartTime, course.EndTime); err != nil {
		return false, err
	}
	return changed, nil
}

// checkSpan 限制课程跨度（含首尾两天）；结束早于开始时不生成场次，不在此拒绝
func (s *courseService) checkSpan(start, end time.Time) error {
	if end.Before(start) {
		return nil
	}
	if int(end.Sub(start).Hours()/24)+1 > s.maxDays {
		return ErrCourseSpanTooLarge
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// checkTimeRange 两个时间都填写时，结束必须晚于开始（HH:MM 可按字符串比较）
func checkTimeRange(start, end string) error {
	if start != "" && end != "" && end <= start {
		return ErrInvalidTimeRange
	}
	return nil
}

func toCourseResponse(c *model.Course, sessionCount int) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:            c.CourseID,
		Code:          c.Code,
		Name:          c.Name,
		DurationHours: c.DurationHours,
		StartDate:     c.StartDate.Format(dateLayout),
		EndDate:       c.EndDate.Format(dateLayout),
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
		Modality:      c.Modality,
		ModalityLabel: model.ModalityLabel(c.Modality),
		Capacity:      scheduling.CapacityFor(c.Modality),
		Instructor:    c.Instructor,
		Objectives:    c.Objectives,
		SessionCount:  sessionCount,
	}
}
