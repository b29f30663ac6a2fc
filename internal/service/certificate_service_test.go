package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/maikostudios/SustentaM-sub001/internal/certificate"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
)

func setupTestCertificateService() (CertificateService, *repository.Repository, *mockRepos) {
	repo, m := newMockRepos()
	svc := NewCertificateService(newTestConfig(), repo, certificate.NewRenderer(), zap.NewNop())
	return svc, repo, m
}

// addParticipant 直接写入学员，attendance/grade 为 nil 表示未录入
func addParticipant(m *mockRepos, session model.Session, id, name, nid, company string, attendance, grade *float64) {
	p := &model.Participant{
		ParticipantID: id,
		SessionID:     session.SessionID,
		CourseID:      session.CourseID,
		Name:          name,
		NationalID:    nid,
		Company:       company,
		Attendance:    attendance,
		Grade:         grade,
	}
	_ = m.participant.Create(context.Background(), p)
}

func TestCertificateService_Templates_Branded(t *testing.T) {
	svc, _, _ := setupTestCertificateService()

	list := svc.Templates()
	if len(list) != 3 {
		t.Fatalf("期望 3 个内置模板，实际=%d", len(list))
	}
	for _, tpl := range list {
		if tpl.OrganizationName != "Sustenta Capacitación" {
			t.Errorf("模板 %s 应套用机构名称，实际=%q", tpl.Name, tpl.OrganizationName)
		}
	}
}

// ── RenderOne 测试 ──

func TestCertificateService_RenderOne(t *testing.T) {
	svc, repo, m := setupTestCertificateService()
	_, sessions := seedCourse(t, repo, m, inPersonCourse("SEG-301", "2025-09-10", "2025-09-10"))
	addParticipant(m, sessions[0], "p1", "José Muñoz", "12.345.678-9", "Acme", fp(75), fp(5.8))

	file, err := svc.RenderOne(context.Background(), "p1", "", adminCaller)
	if err != nil {
		t.Fatalf("RenderOne 应成功: %v", err)
	}
	if !bytes.HasPrefix(file.Data, []byte("%PDF")) {
		t.Error("输出应为 PDF")
	}
	if file.ContentType != "application/pdf" {
		t.Errorf("期望 application/pdf，实际=%s", file.ContentType)
	}
	if file.FileName != "Jose_Munoz_12.345.678-9.pdf" {
		t.Errorf("文件名不符，实际=%s", file.FileName)
	}

	// 承包商可以下载本公司学员的证书
	if _, err := svc.RenderOne(context.Background(), "p1", "modern", acmeCaller); err != nil {
		t.Errorf("承包商下载本公司证书应成功: %v", err)
	}
}

func TestCertificateService_RenderOne_Errors(t *testing.T) {
	svc, repo, m := setupTestCertificateService()
	_, sessions := seedCourse(t, repo, m, inPersonCourse("SEG-302", "2025-09-10", "2025-09-10"))
	addParticipant(m, sessions[0], "pending", "Ana", "1-9", "Acme", fp(80), nil)
	addParticipant(m, sessions[0], "failed", "Beto", "2-7", "Acme", fp(30), fp(6))
	addParticipant(m, sessions[0], "other", "Carla", "3-5", "Otra", fp(90), fp(6))

	tests := []struct {
		name     string
		id       string
		template string
		caller   dto.Caller
		wantErr  error
	}{
		{"未录入成绩", "pending", "", adminCaller, ErrParticipantNotApproved},
		{"未通过", "failed", "", adminCaller, ErrParticipantNotApproved},
		{"其他公司", "other", "", acmeCaller, ErrCompanyForbidden},
		{"学员不存在", "missing", "", adminCaller, ErrParticipantNotFound},
		{"模板不存在", "other", "baroque", adminCaller, certificate.ErrUnknownTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RenderOne(context.Background(), tt.id, tt.template, tt.caller)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}
}

// ── RenderBatch 测试 ──

func TestCertificateService_RenderBatch(t *testing.T) {
	svc, repo, m := setupTestCertificateService()
	courseID, sessions := seedCourse(t, repo, m, inPersonCourse("SEG 303", "2025-09-10", "2025-09-11"))
	addParticipant(m, sessions[0], "p1", "Ana Rojas", "1-9", "Acme", fp(90), fp(6.5))
	addParticipant(m, sessions[0], "p2", "Beto Díaz", "2-7", "Otra", fp(70), fp(4.0))
	addParticipant(m, sessions[1], "p3", "Carla Ruiz", "3-5", "Acme", fp(40), fp(6.0))

	result, err := svc.RenderBatch(context.Background(), courseID, &dto.BatchCertificateRequest{}, adminCaller)
	if err != nil {
		t.Fatalf("RenderBatch 应成功: %v", err)
	}
	if result.FileName != "certificados_SEG_303.zip" {
		t.Errorf("压缩包文件名不符，实际=%s", result.FileName)
	}
	if len(result.Entries) != 2 {
		t.Errorf("只应包含 2 名已通过学员，实际=%v", result.Entries)
	}
	if len(result.Archive) == 0 {
		t.Error("压缩包不应为空")
	}

	// 承包商只打包本公司学员
	scoped, err := svc.RenderBatch(context.Background(), courseID, &dto.BatchCertificateRequest{Template: "elegant"}, acmeCaller)
	if err != nil {
		t.Fatalf("承包商 RenderBatch 应成功: %v", err)
	}
	if len(scoped.Entries) != 1 || scoped.Entries[0] != "Ana_Rojas_1-9.pdf" {
		t.Errorf("承包商只应得到本公司证书，实际=%v", scoped.Entries)
	}
}

func TestCertificateService_RenderBatch_SessionFilter(t *testing.T) {
	svc, repo, m := setupTestCertificateService()
	courseID, sessions := seedCourse(t, repo, m, inPersonCourse("SEG-304", "2025-09-10", "2025-09-11"))
	otherID, otherSessions := seedCourse(t, repo, m, inPersonCourse("SEG-305", "2025-09-10", "2025-09-10"))
	addParticipant(m, sessions[0], "p1", "Ana", "1-9", "", fp(90), fp(6.5))
	addParticipant(m, sessions[1], "p2", "Beto", "2-7", "", fp(90), fp(6.5))

	result, err := svc.RenderBatch(context.Background(), courseID, &dto.BatchCertificateRequest{SessionID: sessions[1].SessionID}, adminCaller)
	if err != nil {
		t.Fatalf("按场次 RenderBatch 应成功: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0] != "Beto_2-7.pdf" {
		t.Errorf("只应包含该场次的学员，实际=%v", result.Entries)
	}

	_, err = svc.RenderBatch(context.Background(), courseID, &dto.BatchCertificateRequest{SessionID: otherSessions[0].SessionID}, adminCaller)
	if !errors.Is(err, ErrSessionNotInCourse) {
		t.Errorf("期望 ErrSessionNotInCourse，实际: %v", err)
	}

	_, err = svc.RenderBatch(context.Background(), otherID, &dto.BatchCertificateRequest{}, adminCaller)
	if !errors.Is(err, certificate.ErrNoApprovedParticipants) {
		t.Errorf("期望 ErrNoApprovedParticipants，实际: %v", err)
	}

	_, err = svc.RenderBatch(context.Background(), "missing", &dto.BatchCertificateRequest{}, adminCaller)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}
