package scheduling

import (
	"time"

	"github.com/maikostudios/SustentaM-sub001/internal/calendar"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
)

// Options 场次生成选项
type Options struct {
	// SkipHolidays 为 true 时线下课程跳过所有非工作日（周末与节假日），
	// 为 false 时只跳过周末
	SkipHolidays bool
}

// DefaultOptions 默认生成选项
func DefaultOptions() Options {
	return Options{SkipHolidays: true}
}

// Generate 按课程日期区间逐日生成场次，每个场次预分配 capacity 个空闲座位
//   - 线下课程跳过非工作日；远程课程保留每一天
//   - 开始日期晚于结束日期时返回空，不报错
//
// 生成的场次与座位已带主键，可直接批量写入
func Generate(course *model.Course, opts Options) []model.Session {
	capacity := CapacityFor(course.Modality)

	var sessions []model.Session
	for _, day := range calendar.Days(course.StartDate, course.EndDate) {
		if skipDay(course.Modality, day, opts) {
			continue
		}
		s := model.Session{
			CourseID:  course.CourseID,
			Date:      day,
			StartTime: course.StartTime,
			EndTime:   course.EndTime,
			Capacity:  capacity,
		}
		_ = s.BeforeCreate(nil)
		s.Seats = NewSeats(s.SessionID, capacity)
		sessions = append(sessions, s)
	}
	return sessions
}

// NewSeats 为场次生成编号 1..capacity 的空闲座位
func NewSeats(sessionID string, capacity int) []model.Seat {
	seats := make([]model.Seat, capacity)
	for i := range seats {
		seats[i] = model.Seat{
			SessionID: sessionID,
			Number:    i + 1,
			Status:    model.SeatFree,
		}
		_ = seats[i].BeforeCreate(nil)
	}
	return seats
}

func skipDay(modality string, day time.Time, opts Options) bool {
	if modality != model.ModalityInPerson {
		return false
	}
	if opts.SkipHolidays {
		return calendar.IsNonWorkingDay(day)
	}
	return calendar.IsWeekend(day)
}
