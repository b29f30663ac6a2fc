package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/maikostudios/SustentaM-sub001/internal/model"
)

func TestReportService_CourseSummary(t *testing.T) {
	repo, m := newMockRepos()
	svc := NewReportService(repo, zap.NewNop())
	courseID, sessions := seedCourse(t, repo, m, inPersonCourse("SEG-501", "2025-09-10", "2025-09-11"))

	addParticipant(m, sessions[0], "p1", "Ana", "1-9", "", fp(90), fp(6.0))
	addParticipant(m, sessions[0], "p2", "Beto", "2-7", "", fp(60), fp(5.0))
	addParticipant(m, sessions[1], "p3", "Carla", "3-5", "", fp(30), fp(3.0))
	addParticipant(m, sessions[1], "p4", "Diego", "4-3", "", nil, nil)
	for _, pid := range []string{"p1", "p2", "p3"} {
		seats, _ := m.seat.ListBySession(context.Background(), m.participant.participants[pid].SessionID)
		for _, seat := range seats {
			if seat.IsFree() {
				m.seat.Occupy(context.Background(), seat.SeatID, pid)
				break
			}
		}
	}

	summary, err := svc.CourseSummary(context.Background(), courseID)
	if err != nil {
		t.Fatalf("CourseSummary 应成功: %v", err)
	}
	if summary.Enrolled != 4 || summary.Approved != 2 || summary.Failed != 1 || summary.Pending != 1 {
		t.Errorf("人数统计不符: %+v", summary)
	}
	if summary.ApprovalRate != 66.7 {
		t.Errorf("期望通过率 66.7，实际=%v", summary.ApprovalRate)
	}
	if summary.AverageAttendance == nil || *summary.AverageAttendance != 60 {
		t.Errorf("期望平均出勤 60，实际=%v", summary.AverageAttendance)
	}
	if summary.AverageGrade == nil || *summary.AverageGrade != 4.7 {
		t.Errorf("期望平均成绩 4.7，实际=%v", summary.AverageGrade)
	}
	if summary.Sessions != 2 || summary.SeatCapacity != 60 || summary.SeatsOccupied != 3 {
		t.Errorf("座位统计不符: sessions=%d capacity=%d occupied=%d", summary.Sessions, summary.SeatCapacity, summary.SeatsOccupied)
	}
	if summary.OccupancyRate != 5 {
		t.Errorf("期望占用率 5，实际=%v", summary.OccupancyRate)
	}

	if _, err := svc.CourseSummary(context.Background(), "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestReportService_Overview(t *testing.T) {
	repo, m := newMockRepos()
	svc := NewReportService(repo, zap.NewNop())
	_, sessions := seedCourse(t, repo, m, inPersonCourse("SEG-502", "2025-09-10", "2025-09-10"))
	remote := inPersonCourse("REM-502", "2025-09-10", "2025-09-10")
	remote.Modality = model.ModalityRemote
	_, remoteSessions := seedCourse(t, repo, m, remote)

	addParticipant(m, sessions[0], "p1", "Ana", "1-9", "", fp(90), fp(6.0))
	addParticipant(m, remoteSessions[0], "p2", "Beto", "2-7", "", fp(10), fp(2.0))

	overview, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview 应成功: %v", err)
	}
	if overview.Courses != 2 || overview.InPerson != 1 || overview.Remote != 1 {
		t.Errorf("课程统计不符: %+v", overview)
	}
	if overview.Participants != 2 || overview.Approved != 1 || overview.Failed != 1 {
		t.Errorf("学员统计不符: %+v", overview)
	}
	if overview.ApprovalRate != 50 {
		t.Errorf("期望通过率 50，实际=%v", overview.ApprovalRate)
	}
	if len(overview.CourseSummary) != 2 {
		t.Errorf("期望 2 条课程汇总，实际=%d", len(overview.CourseSummary))
	}
}

func TestReportService_EmptyCourse(t *testing.T) {
	repo, m := newMockRepos()
	svc := NewReportService(repo, zap.NewNop())
	courseID, _ := seedCourse(t, repo, m, inPersonCourse("SEG-503", "2025-09-12", "2025-09-10"))

	summary, err := svc.CourseSummary(context.Background(), courseID)
	if err != nil {
		t.Fatalf("CourseSummary 应成功: %v", err)
	}
	if summary.ApprovalRate != 0 || summary.OccupancyRate != 0 || summary.AverageGrade != nil {
		t.Errorf("无学员无场次时比例应为 0，实际=%+v", summary)
	}
}

func TestSessionService(t *testing.T) {
	repo, m := newMockRepos()
	svc := NewSessionService(repo, zap.NewNop())
	courseID, sessions := seedCourse(t, repo, m, inPersonCourse("SEG-504", "2025-09-10", "2025-09-11"))
	m.seat.Occupy(context.Background(), firstSeatOf(m, sessions[1].SessionID), "p1")

	list, err := svc.ListByCourse(context.Background(), courseID)
	if err != nil {
		t.Fatalf("ListByCourse 应成功: %v", err)
	}
	if len(list) != 2 || list[1].Occupancy.Occupied != 1 || list[1].Occupancy.Free != 29 {
		t.Errorf("场次占用不符: %+v", list)
	}

	detail, err := svc.Get(context.Background(), sessions[1].SessionID)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if len(detail.Seats) != 30 || detail.Seats[0].Number != 1 || detail.Seats[0].Status != model.SeatOccupied {
		t.Errorf("座位图不符，首个座位=%+v", detail.Seats[0])
	}
	if detail.Course == nil || detail.Course.Code != "SEG-504" {
		t.Error("场次详情应包含课程信息")
	}

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
	if _, err := svc.ListByCourse(context.Background(), "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}
