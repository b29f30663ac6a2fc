package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 2 * time.Minute

// Scheduler 定时任务调度器
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler 按 cronExpr 注册次日场次提醒；cronExpr 为标准 5 段表达式
func NewScheduler(cronExpr string, loc *time.Location, digest *Digest, logger *zap.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err := c.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		entries, err := digest.Run(ctx)
		if err != nil {
			logger.Error("次日场次提醒执行失败", zap.Error(err))
			return
		}
		logger.Info("次日场次提醒已完成", zap.Int("sessions", len(entries)))
	})
	if err != nil {
		return nil, fmt.Errorf("注册定时任务失败 %q: %w", cronExpr, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start 启动调度器（非阻塞）
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("定时任务已启动", zap.Time("next_run", e.Next))
	}
}

// Stop 停止调度器并等待正在执行的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}
