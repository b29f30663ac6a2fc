package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
)

func setupTestCalendarService() (CalendarService, *repository.Repository, *mockRepos) {
	repo, m := newMockRepos()
	svc := NewCalendarService(newTestConfig(), repo, zap.NewNop())
	svc.(*calendarService).now = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, m
}

// ── Month 测试 ──

func TestCalendarService_Month(t *testing.T) {
	svc, repo, m := setupTestCalendarService()
	_, sessions := seedCourse(t, repo, m, inPersonCourse("SEG-401", "2025-09-10", "2025-09-12"))
	addParticipant(m, sessions[0], "p1", "Ana", "1-9", "", nil, nil)
	m.seat.Occupy(context.Background(), firstSeatOf(m, sessions[0].SessionID), "p1")

	month, err := svc.Month(context.Background(), 2025, time.September)
	if err != nil {
		t.Fatalf("Month 应成功: %v", err)
	}
	if len(month.Weeks) != 5 {
		t.Fatalf("2025 年 9 月期望 5 周，实际=%d", len(month.Weeks))
	}

	wed := month.Weeks[1][2]
	if wed.Date.Day() != 10 || len(wed.Sessions) != 1 {
		t.Fatalf("9/10 应有 1 个场次，实际 day=%d sessions=%d", wed.Date.Day(), len(wed.Sessions))
	}
	if wed.Sessions[0].CourseCode != "SEG-401" || wed.Sessions[0].Occupied != 1 || wed.Sessions[0].Capacity != 30 {
		t.Errorf("场次摘要不符: %+v", wed.Sessions[0])
	}

	thu := month.Weeks[2][3]
	if thu.Date.Day() != 18 || thu.Holiday == "" || !thu.NonWorking {
		t.Errorf("9/18 应标记为节假日，实际=%+v", thu.Day)
	}
	if len(thu.Sessions) != 0 {
		t.Error("节假日不应有线下场次")
	}
}

// ── Matrix 测试 ──

func TestCalendarService_Matrix(t *testing.T) {
	svc, repo, m := setupTestCalendarService()
	courseID, _ := seedCourse(t, repo, m, inPersonCourse("SEG-402", "2025-09-10", "2025-09-12"))
	remote := inPersonCourse("REM-402", "2025-09-13", "2025-09-14")
	remote.Modality = model.ModalityRemote
	seedCourse(t, repo, m, remote)
	seedCourse(t, repo, m, inPersonCourse("OUT-402", "2025-10-01", "2025-10-03"))

	matrix, err := svc.Matrix(context.Background(), "2025-09-08", "2025-09-14")
	if err != nil {
		t.Fatalf("Matrix 应成功: %v", err)
	}
	if len(matrix.Days) != 7 {
		t.Fatalf("期望 7 天，实际=%d", len(matrix.Days))
	}
	if len(matrix.Rows) != 2 {
		t.Fatalf("区间外的课程不应出现，实际行数=%d", len(matrix.Rows))
	}

	var inPerson *dto.MatrixRow
	for i := range matrix.Rows {
		if matrix.Rows[i].CourseID == courseID {
			inPerson = &matrix.Rows[i]
		}
	}
	if inPerson == nil {
		t.Fatal("矩阵中应包含线下课程")
	}
	for i, c := range inPerson.Cells {
		has := c != nil
		want := i >= 2 && i <= 4
		if has != want {
			t.Errorf("第 %d 列场次存在=%v，期望=%v", i, has, want)
		}
	}
	if !matrix.Days[5].Weekend || !matrix.Days[6].NonWorking {
		t.Error("周六周日应标记为非工作日")
	}
}

func TestCalendarService_Matrix_InvalidRange(t *testing.T) {
	svc, _, _ := setupTestCalendarService()

	tests := []struct {
		name     string
		from, to string
		wantErr  error
	}{
		{"开始晚于结束", "2025-09-10", "2025-09-01", ErrInvalidRange},
		{"超过 366 天", "2025-01-01", "2026-01-02", ErrRangeTooLarge},
		{"格式错误", "2025/09/01", "2025-09-10", ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Matrix(context.Background(), tt.from, tt.to); !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}
}

// ── 导出测试 ──

func TestCalendarService_ExportMatrix(t *testing.T) {
	svc, repo, m := setupTestCalendarService()
	seedCourse(t, repo, m, inPersonCourse("SEG-403", "2025-09-15", "2025-09-17"))

	file, err := svc.ExportMatrix(context.Background(), "2025-09-15", "2025-09-21")
	if err != nil {
		t.Fatalf("ExportMatrix 应成功: %v", err)
	}
	if file.FileName != "calendario_2025-09-15_2025-09-21.xlsx" {
		t.Errorf("文件名不符，实际=%s", file.FileName)
	}

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		t.Fatalf("导出文件应为合法 xlsx: %v", err)
	}
	defer f.Close()

	code, _ := f.GetCellValue("Calendario", "A2")
	if code != "SEG-403" {
		t.Errorf("A2 期望 SEG-403，实际=%q", code)
	}
	occ, _ := f.GetCellValue("Calendario", "D2")
	if occ != "0/30" {
		t.Errorf("D2 期望 0/30，实际=%q", occ)
	}
	holiday, _ := f.GetCellValue("Feriados", "A2")
	if holiday != "2025-09-18" {
		t.Errorf("节假日 Sheet 首行期望 2025-09-18，实际=%q", holiday)
	}
}

func TestCalendarService_ExportICS(t *testing.T) {
	svc, repo, m := setupTestCalendarService()
	courseID, sessions := seedCourse(t, repo, m, inPersonCourse("SEG-404", "2025-09-10", "2025-09-12"))

	file, err := svc.ExportICS(context.Background(), courseID)
	if err != nil {
		t.Fatalf("ExportICS 应成功: %v", err)
	}
	body := string(file.Data)
	if !strings.HasPrefix(file.ContentType, "text/calendar") {
		t.Errorf("期望 text/calendar，实际=%s", file.ContentType)
	}
	if n := strings.Count(body, "BEGIN:VEVENT"); n != 3 {
		t.Errorf("期望 3 个事件，实际=%d", n)
	}
	if !strings.Contains(body, sessions[0].SessionID+"@sustenta") {
		t.Error("事件 UID 应包含场次 ID")
	}
	if !strings.Contains(body, "SEG-404") {
		t.Error("事件标题应包含课程代码")
	}
	if file.FileName != "curso_SEG-404.ics" {
		t.Errorf("文件名不符，实际=%s", file.FileName)
	}
}

func TestCalendarService_ExportICS_AllDay(t *testing.T) {
	svc, repo, m := setupTestCalendarService()
	req := inPersonCourse("SEG-405", "2025-09-10", "2025-09-10")
	req.StartTime, req.EndTime = "", ""
	courseID, _ := seedCourse(t, repo, m, req)

	file, err := svc.ExportICS(context.Background(), courseID)
	if err != nil {
		t.Fatalf("ExportICS 应成功: %v", err)
	}
	if !strings.Contains(string(file.Data), "20250910") {
		t.Error("未设置时间的场次应导出为当天的全天事件")
	}

	if _, err := svc.ExportICS(context.Background(), "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestCalendarService_Holidays(t *testing.T) {
	svc, _, _ := setupTestCalendarService()

	if n := len(svc.Holidays(2025)); n != 16 {
		t.Errorf("2025 年期望 16 个节假日，实际=%d", n)
	}
}

func firstSeatOf(m *mockRepos, sessionID string) string {
	seats, _ := m.seat.ListBySession(context.Background(), sessionID)
	return seats[0].SeatID
}
