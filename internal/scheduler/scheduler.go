// Package scheduler 后台定时任务
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/ashwinyue/next-fans/internal/logger"
)

// TierRecalculator 全量重算粉丝等级
type TierRecalculator interface {
	RecalculateTiers(ctx context.Context) (int64, error)
}

// Scheduler 定时任务调度器
type Scheduler struct {
	cron   gocron.Scheduler
	logger *zap.Logger
}

// New 创建调度器，时间按 UTC 计算
func New(log *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logger.NewGocronLogger(log)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{cron: s, logger: log.Named("scheduler")}, nil
}

// AddJob 按 cron 表达式添加任务，同一任务不会并发执行
func (s *Scheduler) AddJob(name, cronExpr string, job func()) error {
	_, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(job),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	s.logger.Info("Job scheduled", zap.String("name", name), zap.String("cron", cronExpr))
	return nil
}

// ScheduleTierRecalculation 注册粉丝等级重算任务
func (s *Scheduler) ScheduleTierRecalculation(cronExpr string, fans TierRecalculator) error {
	return s.AddJob("tier-recalculation", cronExpr, func() {
		RunTierRecalculation(context.Background(), fans, s.logger)
	})
}

// RunTierRecalculation 执行一次等级重算
func RunTierRecalculation(ctx context.Context, fans TierRecalculator, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	changed, err := fans.RecalculateTiers(ctx)
	if err != nil {
		log.Error("Tier recalculation failed", zap.Error(err))
		return
	}
	log.Info("Tier recalculation finished",
		zap.Int64("promoted", changed),
		zap.Duration("elapsed", time.Since(start)))
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}
