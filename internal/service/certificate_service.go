package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/certificate"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
)

// ── 证书模块业务错误 ──

var (
	ErrParticipantNotApproved = errors.New("学员尚未通过，不能生成证书")
	ErrSessionNotInCourse     = errors.New("场次不属于该课程")
)

// CertificateService 证书业务接口
type CertificateService interface {
	// Templates 列出内置模板（已套用机构与签名配置）
	Templates() []certificate.Template
	// RenderOne 为单个已通过学员生成 PDF
	RenderOne(ctx context.Context, participantID, templateName string, caller dto.Caller) (*dto.FileResponse, error)
	// RenderBatch 为课程（或其中一个场次）的已通过学员批量生成证书并打包
	RenderBatch(ctx context.Context, courseID string, req *dto.BatchCertificateRequest, caller dto.Caller) (*certificate.BatchResult, error)
}

type certificateService struct {
	cfg      *config.CertificateConfig
	repo     *repository.Repository
	renderer certificate.DocumentRenderer
	packager *certificate.Packager
	logger   *zap.Logger
}

// NewCertificateService 创建 CertificateService 实例
func NewCertificateService(cfg *config.Config, repo *repository.Repository, renderer certificate.DocumentRenderer, logger *zap.Logger) CertificateService {
	return &certificateService{
		cfg:      &cfg.Certificate,
		repo:     repo,
		renderer: renderer,
		packager: certificate.NewPackager(renderer, logger),
		logger:   logger,
	}
}

func (s *certificateService) Templates() []certificate.Template {
	list := certificate.Templates()
	for i := range list {
		list[i] = s.brand(list[i])
	}
	return list
}

// ────────────────────── RenderOne ──────────────────────

func (s *certificateService) RenderOne(ctx context.Context, participantID, templateName string, caller dto.Caller) (*dto.FileResponse, error) {
	tpl, err := s.template(templateName)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Participant.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		s.logger.Error("查询学员失败", zap.String("id", participantID), zap.Error(err))
		return nil, err
	}
	if !visibleTo(p, caller) {
		return nil, ErrCompanyForbidden
	}
	if !p.IsApproved() {
		return nil, ErrParticipantNotApproved
	}

	course, err := s.repo.Course.GetByID(ctx, p.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", p.CourseID), zap.Error(err))
		return nil, err
	}

	data, err := s.renderer.Render(certificate.Input{Participant: p, Course: course, Template: &tpl})
	if err != nil {
		s.logger.Error("生成证书失败", zap.String("participant_id", participantID), zap.Error(err))
		return nil, err
	}

	return &dto.FileResponse{
		FileName:    certificate.EntryName(p.Name, p.NationalID),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// ────────────────────── RenderBatch ──────────────────────

func (s *certificateService) RenderBatch(ctx context.Context, courseID string, req *dto.BatchCertificateRequest, caller dto.Caller) (*certificate.BatchResult, error) {
	tpl, err := s.template(req.Template)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}

	var list []model.Participant
	if req.SessionID != "" {
		list, err = s.participantsOfSession(ctx, courseID, req.SessionID)
	} else {
		list, err = s.repo.Participant.ListByCourse(ctx, courseID)
	}
	if err != nil {
		return nil, err
	}

	visible := list[:0]
	for i := range list {
		if visibleTo(&list[i], caller) {
			visible = append(visible, list[i])
		}
	}

	progress := func(done, total int, name string) {
		s.logger.Debug("批量证书进度",
			zap.String("course_id", courseID),
			zap.Int("done", done),
			zap.Int("total", total),
			zap.String("participant", name),
		)
	}
	return s.packager.Package(ctx, course, visible, &tpl, progress)
}

// ── 辅助函数 ──

func (s *certificateService) participantsOfSession(ctx context.Context, courseID, sessionID string) ([]model.Participant, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询场次失败", zap.String("id", sessionID), zap.Error(err))
		return nil, err
	}
	if session.CourseID != courseID {
		return nil, ErrSessionNotInCourse
	}
	return s.repo.Participant.ListBySession(ctx, sessionID)
}

// template 按名称取模板，空名称使用配置的默认模板
func (s *certificateService) template(name string) (certificate.Template, error) {
	if name == "" {
		name = s.cfg.DefaultTemplate
	}
	tpl, err := certificate.TemplateByName(name)
	if err != nil {
		return certificate.Template{}, err
	}
	return s.brand(tpl), nil
}

func (s *certificateService) brand(tpl certificate.Template) certificate.Template {
	return tpl.WithOrganization(s.cfg.OrganizationName, s.cfg.SignatureName, s.cfg.SignatureRole)
}
