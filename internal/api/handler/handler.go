package handler

import "github.com/maikostudios/SustentaM-sub001/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Course      *CourseHandler
	Session     *SessionHandler
	Participant *ParticipantHandler
	Certificate *CertificateHandler
	Calendar    *CalendarHandler
	Report      *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		User:        NewUserHandler(svc.User),
		Course:      NewCourseHandler(svc.Course),
		Session:     NewSessionHandler(svc.Session),
		Participant: NewParticipantHandler(svc.Participant),
		Certificate: NewCertificateHandler(svc.Certificate),
		Calendar:    NewCalendarHandler(svc.Calendar),
		Report:      NewReportHandler(svc.Report),
	}
}
