package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maikostudios/SustentaM-sub001/internal/calendar"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
)

func course(modality string, from, to time.Time) *model.Course {
	return &model.Course{
		CourseID:  "c-1",
		Code:      "SEG-101",
		Name:      "Seguridad en faenas",
		Modality:  modality,
		StartDate: from,
		EndDate:   to,
		StartTime: "09:00",
		EndTime:   "13:00",
	}
}

func TestCapacityFor(t *testing.T) {
	assert.Equal(t, 30, CapacityFor(model.ModalityInPerson))
	assert.Equal(t, 200, CapacityFor(model.ModalityRemote))
}

func TestGenerate_InPersonWeekdays(t *testing.T) {
	// 2025-09-10 周三 至 09-12 周五
	c := course(model.ModalityInPerson, calendar.Date(2025, time.September, 10), calendar.Date(2025, time.September, 12))
	sessions := Generate(c, DefaultOptions())

	require.Len(t, sessions, 3)
	for i, s := range sessions {
		assert.Equal(t, calendar.Date(2025, time.September, 10+i), s.Date)
		assert.Equal(t, 30, s.Capacity)
		assert.Equal(t, "c-1", s.CourseID)
		assert.Equal(t, "09:00", s.StartTime)
		assert.NotEmpty(t, s.SessionID)
		require.Len(t, s.Seats, 30)
		assert.Equal(t, 1, s.Seats[0].Number)
		assert.Equal(t, 30, s.Seats[29].Number)
		assert.Equal(t, Occupancy{Capacity: 30, Occupied: 0, Free: 30}, SessionOccupancy(&s))
	}
}

func TestGenerate_InPersonSkipsNonWorkingDays(t *testing.T) {
	// 2025-09-17 周三 至 09-22 周一：18、19 为节假日，20、21 为周末
	c := course(model.ModalityInPerson, calendar.Date(2025, time.September, 17), calendar.Date(2025, time.September, 22))

	sessions := Generate(c, DefaultOptions())
	require.Len(t, sessions, 2)
	assert.Equal(t, calendar.Date(2025, time.September, 17), sessions[0].Date)
	assert.Equal(t, calendar.Date(2025, time.September, 22), sessions[1].Date)

	// 只跳过周末时，节假日保留
	sessions = Generate(c, Options{SkipHolidays: false})
	assert.Len(t, sessions, 4)
}

func TestGenerate_RemoteKeepsEveryDay(t *testing.T) {
	c := course(model.ModalityRemote, calendar.Date(2025, time.September, 17), calendar.Date(2025, time.September, 22))
	sessions := Generate(c, DefaultOptions())

	require.Len(t, sessions, 6)
	for _, s := range sessions {
		assert.Equal(t, 200, s.Capacity)
		assert.Len(t, s.Seats, 200)
	}
}

func TestGenerate_ReversedRange(t *testing.T) {
	c := course(model.ModalityInPerson, calendar.Date(2025, time.September, 12), calendar.Date(2025, time.September, 10))
	assert.Empty(t, Generate(c, DefaultOptions()))
}

func TestGenerate_NeverProducesNonWorkingInPersonSession(t *testing.T) {
	c := course(model.ModalityInPerson, calendar.Date(2024, time.January, 1), calendar.Date(2026, time.December, 31))
	for _, s := range Generate(c, DefaultOptions()) {
		require.False(t, calendar.IsNonWorkingDay(s.Date), s.Date.Format("2006-01-02"))
	}
}

func TestGenerate_SeatIDsUnique(t *testing.T) {
	c := course(model.ModalityInPerson, calendar.Date(2025, time.September, 1), calendar.Date(2025, time.September, 5))
	seen := map[string]bool{}
	for _, s := range Generate(c, DefaultOptions()) {
		for _, seat := range s.Seats {
			assert.Equal(t, s.SessionID, seat.SessionID)
			assert.False(t, seen[seat.SeatID], "座位主键重复")
			seen[seat.SeatID] = true
		}
	}
	assert.Len(t, seen, 5*30)
}

func TestSeatLifecycle(t *testing.T) {
	seats := NewSeats("s-1", 3)
	Occupy(&seats[0], "p-1")

	first := FirstFreeSeat(seats)
	require.NotNil(t, first)
	assert.Equal(t, 2, first.Number)

	Occupy(first, "p-2")
	Occupy(&seats[2], "p-3")
	assert.Nil(t, FirstFreeSeat(seats))

	occ := OccupancyOf(3, seats)
	assert.True(t, occ.Full())
	assert.Equal(t, 3, occ.Occupied)

	Release(&seats[0])
	assert.Nil(t, seats[0].ParticipantID)
	assert.Equal(t, 1, FirstFreeSeat(seats).Number)
	assert.Equal(t, Occupancy{Capacity: 3, Occupied: 2, Free: 1}, OccupancyOf(3, seats))
}
