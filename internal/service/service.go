package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/certificate"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
	"github.com/maikostudios/SustentaM-sub001/pkg/jwt"
)

// TokenBlacklist 已注销 Token 的存储，Redis 不可用时传 nil
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	User        UserService
	Course      CourseService
	Session     SessionService
	Participant ParticipantService
	Certificate CertificateService
	Calendar    CalendarService
	Report      ReportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	renderer := certificate.NewRenderer()
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:        NewUserService(repo, logger),
		Course:      NewCourseService(cfg, repo, logger),
		Session:     NewSessionService(repo, logger),
		Participant: NewParticipantService(cfg, repo, logger),
		Certificate: NewCertificateService(cfg, repo, renderer, logger),
		Calendar:    NewCalendarService(cfg, repo, logger),
		Report:      NewReportService(repo, logger),
	}
}
