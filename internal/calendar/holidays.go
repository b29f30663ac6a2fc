// Package calendar 提供节假日与非工作日判定，以及日历视图所需的日期网格。
//
// 所有函数只关心日期的年月日部分，时间与时区被忽略。
package calendar

import (
	"sort"
	"time"
)

// Holiday 节假日
type Holiday struct {
	Date  time.Time `json:"date"`
	Name  string    `json:"name"`
	Fixed bool      `json:"fixed"` // true 表示每年同月同日
}

type monthDay struct {
	month time.Month
	day   int
}

// fixedHolidays 固定节假日，与年份无关
var fixedHolidays = map[monthDay]string{
	{time.January, 1}:    "Año Nuevo",
	{time.May, 1}:        "Día Nacional del Trabajo",
	{time.May, 21}:       "Día de las Glorias Navales",
	{time.June, 29}:      "San Pedro y San Pablo",
	{time.July, 16}:      "Día de la Virgen del Carmen",
	{time.August, 15}:    "Asunción de la Virgen",
	{time.September, 18}: "Independencia Nacional",
	{time.September, 19}: "Día de las Glorias del Ejército",
	{time.October, 12}:   "Encuentro de Dos Mundos",
	{time.October, 31}:   "Día de las Iglesias Evangélicas y Protestantes",
	{time.November, 1}:   "Día de Todos los Santos",
	{time.December, 8}:   "Inmaculada Concepción",
	{time.December, 25}:  "Navidad",
}

// variableHolidays 按年份维护的移动节假日
// 未收录的年份不返回任何移动节假日
var variableHolidays = map[int]map[monthDay]string{
	2024: {
		{time.March, 29}:     "Viernes Santo",
		{time.March, 30}:     "Sábado Santo",
		{time.June, 20}:      "Día Nacional de los Pueblos Indígenas",
		{time.September, 20}: "Feriado adicional Fiestas Patrias",
	},
	2025: {
		{time.April, 18}: "Viernes Santo",
		{time.April, 19}: "Sábado Santo",
		{time.June, 20}:  "Día Nacional de los Pueblos Indígenas",
	},
	2026: {
		{time.April, 3}: "Viernes Santo",
		{time.April, 4}: "Sábado Santo",
		{time.June, 21}: "Día Nacional de los Pueblos Indígenas",
	},
}

// FixedHoliday 返回固定节假日名称
func FixedHoliday(d time.Time) (string, bool) {
	name, ok := fixedHolidays[monthDay{d.Month(), d.Day()}]
	return name, ok
}

// VariableHoliday 返回该年份的移动节假日名称
func VariableHoliday(d time.Time) (string, bool) {
	byYear, ok := variableHolidays[d.Year()]
	if !ok {
		return "", false
	}
	name, ok := byYear[monthDay{d.Month(), d.Day()}]
	return name, ok
}

// IsHoliday 是否为节假日（固定或移动）
func IsHoliday(d time.Time) bool {
	return HolidayName(d) != ""
}

// HolidayName 返回节假日名称，非节假日返回空串；固定节假日优先
func HolidayName(d time.Time) string {
	if name, ok := FixedHoliday(d); ok {
		return name
	}
	if name, ok := VariableHoliday(d); ok {
		return name
	}
	return ""
}

// IsWeekend 是否为周六或周日
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsNonWorkingDay 非工作日 = 节假日 或 周末
// 场次生成与日历展示都使用这一判定
func IsNonWorkingDay(d time.Time) bool {
	return IsHoliday(d) || IsWeekend(d)
}

// SupportedYears 返回收录了移动节假日的年份（升序）
func SupportedYears() []int {
	years := make([]int, 0, len(variableHolidays))
	for y := range variableHolidays {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Holidays 列出某一年的全部节假日（按日期排序）
func Holidays(year int) []Holiday {
	result := make([]Holiday, 0, len(fixedHolidays)+4)
	seen := make(map[monthDay]bool)

	for md, name := range fixedHolidays {
		seen[md] = true
		result = append(result, Holiday{Date: Date(year, md.month, md.day), Name: name, Fixed: true})
	}
	for md, name := range variableHolidays[year] {
		if seen[md] {
			continue
		}
		result = append(result, Holiday{Date: Date(year, md.month, md.day), Name: name})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}
