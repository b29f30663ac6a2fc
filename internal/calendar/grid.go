package calendar

import (
	"time"

	"github.com/jinzhu/now"
)

// Day 日历网格中的一天
type Day struct {
	Date       time.Time `json:"date"`
	InMonth    bool      `json:"in_month"`
	Weekend    bool      `json:"weekend"`
	Holiday    string    `json:"holiday,omitempty"`
	NonWorking bool      `json:"non_working"`
}

// 周一为一周的第一天
var weekConfig = &now.Config{WeekStartDay: time.Monday, TimeLocation: time.UTC}

// Date 构造 UTC 零点日期
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize 取 t 在其自身时区下的年月日，返回 UTC 零点
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Days 列出 [from, to] 闭区间内的每一天；from 晚于 to 时返回空
func Days(from, to time.Time) []time.Time {
	from, to = Normalize(from), Normalize(to)
	if from.After(to) {
		return nil
	}
	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DescribeDay 生成单日的日历信息
func DescribeDay(d time.Time) Day {
	d = Normalize(d)
	holiday := HolidayName(d)
	weekend := IsWeekend(d)
	return Day{
		Date:       d,
		InMonth:    true,
		Weekend:    weekend,
		Holiday:    holiday,
		NonWorking: weekend || holiday != "",
	}
}

// MonthGrid 生成月视图网格：按周排列，每周从周一到周日，
// 首尾补齐相邻月份的日期（InMonth=false）
func MonthGrid(year int, month time.Month) [][7]Day {
	first := weekConfig.With(Date(year, month, 1))
	start := Normalize(weekConfig.With(first.BeginningOfMonth()).BeginningOfWeek())
	end := Normalize(weekConfig.With(first.EndOfMonth()).EndOfWeek())

	days := Days(start, end)
	weeks := make([][7]Day, 0, len(days)/7)
	var week [7]Day
	for i, d := range days {
		day := DescribeDay(d)
		day.InMonth = d.Month() == month
		week[i%7] = day
		if i%7 == 6 {
			weeks = append(weeks, week)
		}
	}
	return weeks
}
