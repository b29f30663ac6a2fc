// Package scheduling 负责按课程日期区间生成场次，并维护座位容量模型。
package scheduling

import "github.com/maikostudios/SustentaM-sub001/internal/model"

// 各授课方式的场次容量
const (
	InPersonCapacity = 30
	RemoteCapacity   = 200
)

// CapacityFor 返回授课方式对应的场次容量
// 容量规则只在此处定义，生成、展示与报表均调用本函数
func CapacityFor(modality string) int {
	if modality == model.ModalityRemote {
		return RemoteCapacity
	}
	return InPersonCapacity
}

// Occupancy 场次占用情况
type Occupancy struct {
	Capacity int `json:"capacity"`
	Occupied int `json:"occupied"`
	Free     int `json:"free"`
}

// Full 是否已满
func (o Occupancy) Full() bool { return o.Free <= 0 }

// OccupancyOf 由座位记录统计占用情况
func OccupancyOf(capacity int, seats []model.Seat) Occupancy {
	occupied := 0
	for i := range seats {
		if !seats[i].IsFree() {
			occupied++
		}
	}
	return NewOccupancy(capacity, occupied)
}

// NewOccupancy 由已占用座位数构造占用情况
func NewOccupancy(capacity, occupied int) Occupancy {
	free := capacity - occupied
	if free < 0 {
		free = 0
	}
	return Occupancy{Capacity: capacity, Occupied: occupied, Free: free}
}

// SessionOccupancy 统计已加载座位的场次占用情况
func SessionOccupancy(s *model.Session) Occupancy {
	return OccupancyOf(s.Capacity, s.Seats)
}

// FirstFreeSeat 返回编号最小的空闲座位；没有空闲座位时返回 nil
func FirstFreeSeat(seats []model.Seat) *model.Seat {
	var best *model.Seat
	for i := range seats {
		if !seats[i].IsFree() {
			continue
		}
		if best == nil || seats[i].Number < best.Number {
			best = &seats[i]
		}
	}
	return best
}

// Occupy 将座位分配给学员
func Occupy(seat *model.Seat, participantID string) {
	seat.Status = model.SeatOccupied
	seat.ParticipantID = &participantID
}

// Release 释放座位
func Release(seat *model.Seat) {
	seat.Status = model.SeatFree
	seat.ParticipantID = nil
}
