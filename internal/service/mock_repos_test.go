package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
	pkgerrors "github.com/maikostudios/SustentaM-sub001/pkg/errors"
)

// mockRepos 内存版仓储集合，供 service 单元测试使用
type mockRepos struct {
	user        *mockUserRepo
	course      *mockCourseRepo
	session     *mockSessionRepo
	seat        *mockSeatRepo
	participant *mockParticipantRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:        newMockUserRepo(),
		course:      newMockCourseRepo(),
		seat:        newMockSeatRepo(),
		participant: newMockParticipantRepo(),
	}
	m.session = newMockSessionRepo(m.course, m.seat)
	repo := &repository.Repository{
		User:        m.user,
		Course:      m.course,
		Session:     m.session,
		Seat:        m.seat,
		Participant: m.participant,
	}
	return repo, m
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	_ = user.BeforeCreate(nil)
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, pkgerrors.Wrap("get", "users", gorm.ErrRecordNotFound)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pkgerrors.Wrap("get", "users", gorm.ErrRecordNotFound)
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	failErr error // 非 nil 时所有读操作返回该错误
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	_ = course.BeforeCreate(nil)
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if m.failErr != nil {
		return nil, pkgerrors.Wrap("get", "courses", m.failErr)
	}
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, pkgerrors.Wrap("get", "courses", gorm.ErrRecordNotFound)
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	if m.failErr != nil {
		return nil, pkgerrors.Wrap("list", "courses", m.failErr)
	}
	var result []model.Course
	for _, c := range m.courses {
		if filter.Modality != "" && c.Modality != filter.Modality {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(c.Code, filter.Keyword) && !strings.Contains(c.Name, filter.Keyword) {
			continue
		}
		if filter.From != nil && c.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && c.StartDate.After(*filter.To) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	cp := *course
	m.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.Session
	courses  *mockCourseRepo
	seats    *mockSeatRepo
}

func newMockSessionRepo(courses *mockCourseRepo, seats *mockSeatRepo) *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session), courses: courses, seats: seats}
}

func (m *mockSessionRepo) BatchCreate(_ context.Context, sessions []model.Session) error {
	for i := range sessions {
		s := sessions[i]
		s.Seats = nil
		m.sessions[s.SessionID] = &s
	}
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, pkgerrors.Wrap("get", "sessions", gorm.ErrRecordNotFound)
	}
	cp := *s
	if c, ok := m.courses.courses[s.CourseID]; ok {
		course := *c
		cp.Course = &course
	}
	cp.Seats, _ = m.seats.ListBySession(ctx, id)
	return &cp, nil
}

func (m *mockSessionRepo) ListByCourse(_ context.Context, courseID string) ([]model.Session, error) {
	var result []model.Session
	for _, s := range m.sessions {
		if s.CourseID == courseID {
			result = append(result, *s)
		}
	}
	sortSessions(result)
	return result, nil
}

func (m *mockSessionRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]model.Session, error) {
	var result []model.Session
	for _, s := range m.sessions {
		if s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		cp := *s
		if c, ok := m.courses.courses[s.CourseID]; ok {
			course := *c
			cp.Course = &course
		}
		result = append(result, cp)
	}
	sortSessions(result)
	return result, nil
}

func (m *mockSessionRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, s := range m.sessions {
		if s.CourseID == courseID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func sortSessions(list []model.Session) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].SessionID < list[j].SessionID
	})
}

// ── Mock SeatRepository ──

type mockSeatRepo struct {
	seats map[string]*model.Seat
}

func newMockSeatRepo() *mockSeatRepo {
	return &mockSeatRepo{seats: make(map[string]*model.Seat)}
}

func (m *mockSeatRepo) BatchCreate(_ context.Context, seats []model.Seat) error {
	for i := range seats {
		s := seats[i]
		m.seats[s.SeatID] = &s
	}
	return nil
}

func (m *mockSeatRepo) ListBySession(_ context.Context, sessionID string) ([]model.Seat, error) {
	var result []model.Seat
	for _, s := range m.seats {
		if s.SessionID == sessionID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (m *mockSeatRepo) CountOccupied(_ context.Context, sessionIDs []string) (map[string]int, error) {
	wanted := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	result := make(map[string]int)
	for _, s := range m.seats {
		if wanted[s.SessionID] && !s.IsFree() {
			result[s.SessionID]++
		}
	}
	return result, nil
}

func (m *mockSeatRepo) Occupy(_ context.Context, seatID, participantID string) error {
	s, ok := m.seats[seatID]
	if !ok || !s.IsFree() {
		return pkgerrors.ErrOptimisticLock
	}
	s.Status = model.SeatOccupied
	s.ParticipantID = &participantID
	return nil
}

func (m *mockSeatRepo) Release(_ context.Context, seatID string) error {
	if s, ok := m.seats[seatID]; ok {
		s.Status = model.SeatFree
		s.ParticipantID = nil
	}
	return nil
}

func (m *mockSeatRepo) DeleteBySessions(_ context.Context, sessionIDs []string) error {
	wanted := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	for id, s := range m.seats {
		if wanted[s.SessionID] {
			delete(m.seats, id)
		}
	}
	return nil
}

// ── Mock ParticipantRepository ──

type mockParticipantRepo struct {
	participants map[string]*model.Participant
	// staleLookup 为 true 时按证件号查询总是未命中，模拟并发写入尚不可见
	staleLookup bool
}

func newMockParticipantRepo() *mockParticipantRepo {
	return &mockParticipantRepo{participants: make(map[string]*model.Participant)}
}

func (m *mockParticipantRepo) Create(_ context.Context, p *model.Participant) error {
	for _, existing := range m.participants {
		if existing.SessionID == p.SessionID && existing.NationalID == p.NationalID {
			return pkgerrors.Wrap("create", "participants", gorm.ErrDuplicatedKey)
		}
	}
	_ = p.BeforeCreate(nil)
	cp := *p
	m.participants[p.ParticipantID] = &cp
	return nil
}

func (m *mockParticipantRepo) GetByID(_ context.Context, id string) (*model.Participant, error) {
	if p, ok := m.participants[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, pkgerrors.Wrap("get", "participants", gorm.ErrRecordNotFound)
}

func (m *mockParticipantRepo) GetBySessionAndNationalID(_ context.Context, sessionID, nationalID string) (*model.Participant, error) {
	if m.staleLookup {
		return nil, pkgerrors.Wrap("get", "participants", gorm.ErrRecordNotFound)
	}
	for _, p := range m.participants {
		if p.SessionID == sessionID && p.NationalID == nationalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pkgerrors.Wrap("get", "participants", gorm.ErrRecordNotFound)
}

func (m *mockParticipantRepo) ListBySession(_ context.Context, sessionID string) ([]model.Participant, error) {
	return m.filter(func(p *model.Participant) bool { return p.SessionID == sessionID }), nil
}

func (m *mockParticipantRepo) ListByCourse(_ context.Context, courseID string) ([]model.Participant, error) {
	return m.filter(func(p *model.Participant) bool { return p.CourseID == courseID }), nil
}

func (m *mockParticipantRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	return int64(len(m.filter(func(p *model.Participant) bool { return p.CourseID == courseID }))), nil
}

func (m *mockParticipantRepo) UpdateResults(_ context.Context, p *model.Participant) error {
	stored, ok := m.participants[p.ParticipantID]
	if !ok || stored.Version != p.Version {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version++
	cp := *p
	m.participants[p.ParticipantID] = &cp
	return nil
}

func (m *mockParticipantRepo) Delete(_ context.Context, id string) error {
	delete(m.participants, id)
	return nil
}

func (m *mockParticipantRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, p := range m.participants {
		if p.CourseID == courseID {
			delete(m.participants, id)
		}
	}
	return nil
}

func (m *mockParticipantRepo) filter(keep func(*model.Participant) bool) []model.Participant {
	var result []model.Participant
	for _, p := range m.participants {
		if keep(p) {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// ── 测试夹具 ──

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Calendar: config.CalendarConfig{
			SkipHolidaysInPerson: true,
			Timezone:             "America/Santiago",
		},
		Certificate: config.CertificateConfig{
			DefaultTemplate:  "classic",
			OrganizationName: "Sustenta Capacitación",
			SignatureRole:    "Director Académico",
		},
		Enrollment: config.EnrollmentConfig{EnforceCapacity: true},
	}
}

var (
	adminCaller = dto.Caller{UserID: "admin-1", Role: model.RoleAdmin}
	acmeCaller  = dto.Caller{UserID: "contractor-1", Role: model.RoleContractor, Company: "Acme"}
)

func fp(v float64) *float64 { return &v }

// seedCourse 通过 CourseService 创建课程，返回课程 ID 与按日期排序的场次
func seedCourse(t *testing.T, repo *repository.Repository, m *mockRepos, req *dto.CreateCourseRequest) (string, []model.Session) {
	t.Helper()
	svc := NewCourseService(newTestConfig(), repo, zap.NewNop())
	resp, err := svc.Create(context.Background(), req, adminCaller.UserID)
	if err != nil {
		t.Fatalf("创建课程应成功: %v", err)
	}
	sessions, _ := m.session.ListByCourse(context.Background(), resp.ID)
	return resp.ID, sessions
}

func inPersonCourse(code, start, end string) *dto.CreateCourseRequest {
	return &dto.CreateCourseRequest{
		Code:          code,
		Name:          "Seguridad en Faena",
		DurationHours: 16,
		StartDate:     start,
		EndDate:       end,
		StartTime:     "09:00",
		EndTime:       "13:00",
		Modality:      model.ModalityInPerson,
		Instructor:    "Ana Rojas",
	}
}

// fillSeats 占满场次的全部座位
func fillSeats(m *mockRepos, sessionID string) {
	for _, seat := range m.seat.seats {
		if seat.SessionID == sessionID {
			pid := "filler-" + seat.SeatID
			seat.Status = model.SeatOccupied
			seat.ParticipantID = &pid
		}
	}
}
