package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/maikostudios/SustentaM-sub001/internal/calendar"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
	"github.com/maikostudios/SustentaM-sub001/internal/scheduling"
)

// DigestEntry 提醒摘要中的一个场次
type DigestEntry struct {
	SessionID  string
	CourseCode string
	CourseName string
	Date       time.Time
	StartTime  string
	Occupancy  scheduling.Occupancy
}

// Digest 次日场次提醒
// 只写日志模拟发送，不接入邮件服务
type Digest struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewDigest 创建次日场次提醒任务；loc 决定“明天”的日期
func NewDigest(repo *repository.Repository, loc *time.Location, logger *zap.Logger) *Digest {
	if loc == nil {
		loc = time.UTC
	}
	return &Digest{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// Run 汇总明天的场次并逐条记录日志
func (d *Digest) Run(ctx context.Context) ([]DigestEntry, error) {
	tomorrow := calendar.Normalize(d.now().In(d.loc)).AddDate(0, 0, 1)

	sessions, err := d.repo.Session.ListByDateRange(ctx, tomorrow, tomorrow)
	if err != nil {
		d.logger.Error("查询次日场次失败", zap.Time("date", tomorrow), zap.Error(err))
		return nil, err
	}
	if len(sessions) == 0 {
		d.logger.Info("次日没有场次", zap.String("date", tomorrow.Format("2006-01-02")))
		return nil, nil
	}

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.SessionID)
	}
	occupied, err := d.repo.Seat.CountOccupied(ctx, ids)
	if err != nil {
		d.logger.Error("统计座位占用失败", zap.Error(err))
		return nil, err
	}

	entries := make([]DigestEntry, 0, len(sessions))
	for _, s := range sessions {
		entry := DigestEntry{
			SessionID: s.SessionID,
			Date:      s.Date,
			StartTime: s.StartTime,
			Occupancy: scheduling.NewOccupancy(s.Capacity, occupied[s.SessionID]),
		}
		if s.Course != nil {
			entry.CourseCode = s.Course.Code
			entry.CourseName = s.Course.Name
		}
		entries = append(entries, entry)

		d.logger.Info("次日场次提醒",
			zap.String("session_id", entry.SessionID),
			zap.String("course", entry.CourseCode),
			zap.String("date", entry.Date.Format("2006-01-02")),
			zap.String("start_time", entry.StartTime),
			zap.Int("occupied", entry.Occupancy.Occupied),
			zap.Int("capacity", entry.Occupancy.Capacity),
		)
	}
	return entries, nil
}
