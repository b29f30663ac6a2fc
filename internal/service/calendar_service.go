package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/calendar"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
)

// ── 日历模块业务错误 ──

var (
	ErrInvalidRange       = errors.New("开始日期不能晚于结束日期")
	ErrRangeTooLarge      = errors.New("日期区间不能超过 366 天")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const maxRangeDays = 366

// CalendarService 日历视图与导出业务接口
type CalendarService interface {
	// Month 月视图：按周排列的日期网格，每天附带当天的场次
	Month(ctx context.Context, year int, month time.Month) (*dto.MonthResponse, error)
	// Matrix 课程 × 日期矩阵，用于多课程对比视图
	Matrix(ctx context.Context, from, to string) (*dto.MatrixResponse, error)
	// ExportMatrix 将矩阵导出为 Excel
	ExportMatrix(ctx context.Context, from, to string) (*dto.FileResponse, error)
	// ExportICS 将课程场次导出为 iCalendar
	ExportICS(ctx context.Context, courseID string) (*dto.FileResponse, error)
	Holidays(year int) []calendar.Holiday
}

type calendarService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) CalendarService {
	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		logger.Warn("加载时区失败，使用 UTC", zap.String("timezone", cfg.Calendar.Timezone), zap.Error(err))
		loc = time.UTC
	}
	return &calendarService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// ────────────────────── Month ──────────────────────

func (s *calendarService) Month(ctx context.Context, year int, month time.Month) (*dto.MonthResponse, error) {
	grid := calendar.MonthGrid(year, month)
	if len(grid) == 0 {
		return &dto.MonthResponse{Year: year, Month: int(month)}, nil
	}
	first := grid[0][0].Date
	last := grid[len(grid)-1][6].Date

	byDay, err := s.sessionsByDay(ctx, first, last)
	if err != nil {
		return nil, err
	}

	weeks := make([][7]dto.CalendarDay, len(grid))
	for w, week := range grid {
		for d, day := range week {
			weeks[w][d] = dto.CalendarDay{Day: day, Sessions: byDay[dayKey(day.Date)]}
		}
	}
	return &dto.MonthResponse{Year: year, Month: int(month), Weeks: weeks}, nil
}

// ────────────────────── Matrix ──────────────────────

func (s *calendarService) Matrix(ctx context.Context, from, to string) (*dto.MatrixResponse, error) {
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{From: &start, To: &end})
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}
	byDay, err := s.sessionsByDay(ctx, start, end)
	if err != nil {
		return nil, err
	}

	dates := calendar.Days(start, end)
	days := make([]calendar.Day, 0, len(dates))
	for _, d := range dates {
		days = append(days, calendar.DescribeDay(d))
	}

	rows := make([]dto.MatrixRow, 0, len(courses))
	for _, c := range courses {
		row := dto.MatrixRow{
			CourseID:   c.CourseID,
			CourseCode: c.Code,
			CourseName: c.Name,
			Modality:   c.Modality,
			Cells:      make([]*dto.CalendarSession, len(dates)),
		}
		for i, d := range dates {
			for j, cs := range byDay[dayKey(d)] {
				if cs.CourseID == c.CourseID {
					row.Cells[i] = &byDay[dayKey(d)][j]
					break
				}
			}
		}
		rows = append(rows, row)
	}
	return &dto.MatrixResponse{Days: days, Rows: rows}, nil
}

// ────────────────────── ExportMatrix ──────────────────────

func (s *calendarService) ExportMatrix(ctx context.Context, from, to string) (*dto.FileResponse, error) {
	matrix, err := s.Matrix(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Calendario"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F3A8A"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	nonWorkingStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	centerStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 36)
	f.SetColWidth(sheetName, "C", "C", 12)

	// 表头：代码 | 课程 | 授课方式 | 每天一列
	f.SetCellValue(sheetName, "A1", "Código")
	f.SetCellValue(sheetName, "B1", "Curso")
	f.SetCellValue(sheetName, "C1", "Modalidad")
	for i, day := range matrix.Days {
		col := colName(3 + i)
		f.SetColWidth(sheetName, col, col, 9)
		f.SetCellValue(sheetName, cell(col, 1), fmt.Sprintf("%s\n%s", weekdayShort[day.Date.Weekday()], day.Date.Format("02/01")))
	}
	f.SetRowHeight(sheetName, 1, 30)
	f.SetCellStyle(sheetName, "A1", cell(colName(2+len(matrix.Days)), 1), headerStyle)

	lastRow := len(matrix.Rows) + 1
	for r, row := range matrix.Rows {
		rowNum := r + 2
		f.SetCellValue(sheetName, cell("A", rowNum), row.CourseCode)
		f.SetCellValue(sheetName, cell("B", rowNum), row.CourseName)
		f.SetCellValue(sheetName, cell("C", rowNum), model.ModalityLabel(row.Modality))
		for i, cs := range row.Cells {
			if cs == nil {
				continue
			}
			f.SetCellValue(sheetName, cell(colName(3+i), rowNum), fmt.Sprintf("%d/%d", cs.Occupied, cs.Capacity))
		}
	}

	// 非工作日整列着色
	for i, day := range matrix.Days {
		col := colName(3 + i)
		style := centerStyle
		if day.NonWorking {
			style = nonWorkingStyle
		}
		if lastRow >= 2 {
			f.SetCellStyle(sheetName, cell(col, 2), cell(col, lastRow), style)
		}
	}

	// 第二个 Sheet：区间内的节假日
	holidaySheet := "Feriados"
	f.NewSheet(holidaySheet)
	f.SetColWidth(holidaySheet, "A", "A", 14)
	f.SetColWidth(holidaySheet, "B", "B", 48)
	f.SetCellValue(holidaySheet, "A1", "Fecha")
	f.SetCellValue(holidaySheet, "B1", "Feriado")
	f.SetCellStyle(holidaySheet, "A1", "B1", headerStyle)
	hr := 2
	for _, day := range matrix.Days {
		if day.Holiday == "" {
			continue
		}
		f.SetCellValue(holidaySheet, cell("A", hr), day.Date.Format(dateLayout))
		f.SetCellValue(holidaySheet, cell("B", hr), day.Holiday)
		hr++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &dto.FileResponse{
		FileName:    fmt.Sprintf("calendario_%s_%s.xlsx", from, to),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

// ────────────────────── ExportICS ──────────────────────

func (s *calendarService) ExportICS(ctx context.Context, courseID string) (*dto.FileResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
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

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Sustenta//Capacitaciones//ES")
	cal.SetName(fmt.Sprintf("%s %s", course.Code, course.Name))
	cal.SetXWRTimezone(s.loc.String())

	description := fmt.Sprintf("Modalidad: %s\nDuración: %d horas", model.ModalityLabel(course.Modality), course.DurationHours)
	if course.Instructor != "" {
		description += "\nRelator: " + course.Instructor
	}

	for _, session := range sessions {
		event := cal.AddEvent(session.SessionID + "@sustenta")
		event.SetDtStampTime(stamp)
		event.SetSummary(fmt.Sprintf("%s · %s", course.Code, course.Name))
		event.SetDescription(description)
		if course.Modality == model.ModalityRemote {
			event.SetLocation("Remota")
		}

		start, okStart := s.clock(session.Date, session.StartTime)
		end, okEnd := s.clock(session.Date, session.EndTime)
		if okStart && okEnd {
			event.SetStartAt(start)
			event.SetEndAt(end)
		} else {
			// 未设置上课时间的场次按全天事件导出
			day := calendar.Normalize(session.Date)
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
	}

	return &dto.FileResponse{
		FileName:    "curso_" + strings.ReplaceAll(course.Code, " ", "_") + ".ics",
		ContentType: "text/calendar; charset=utf-8",
		Data:        []byte(cal.Serialize()),
	}, nil
}

// ────────────────────── Holidays ──────────────────────

func (s *calendarService) Holidays(year int) []calendar.Holiday {
	return calendar.Holidays(year)
}

// ── 辅助函数 ──

// sessionsByDay 查询区间内的场次并按日期分组
func (s *calendarService) sessionsByDay(ctx context.Context, from, to time.Time) (map[string][]dto.CalendarSession, error) {
	sessions, err := s.repo.Session.ListByDateRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询场次失败", zap.Error(err))
		return nil, err
	}
	occupied, err := countOccupied(ctx, s.repo, sessions)
	if err != nil {
		s.logger.Error("统计座位占用失败", zap.Error(err))
		return nil, err
	}

	byDay := make(map[string][]dto.CalendarSession)
	for _, session := range sessions {
		cs := dto.CalendarSession{
			SessionID: session.SessionID,
			CourseID:  session.CourseID,
			Capacity:  session.Capacity,
			Occupied:  occupied[session.SessionID],
		}
		if session.Course != nil {
			cs.CourseCode = session.Course.Code
			cs.CourseName = session.Course.Name
			cs.Modality = session.Course.Modality
		}
		key := dayKey(session.Date)
		byDay[key] = append(byDay[key], cs)
	}
	for key := range byDay {
		list := byDay[key]
		sort.SliceStable(list, func(i, j int) bool { return list[i].CourseCode < list[j].CourseCode })
	}
	return byDay, nil
}

// clock 将场次日期与 HH:MM 组合为本地时间
func (s *calendarService) clock(date time.Time, hhmm string) (time.Time, bool) {
	if hhmm == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, s.loc), true
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	if end.Sub(start) >= maxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, ErrRangeTooLarge
	}
	return start, end, nil
}

func dayKey(d time.Time) string {
	return d.Format(dateLayout)
}

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "Lun",
	time.Tuesday:   "Mar",
	time.Wednesday: "Mié",
	time.Thursday:  "Jue",
	time.Friday:    "Vie",
	time.Saturday:  "Sáb",
	time.Sunday:    "Dom",
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
