package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// NotificationCleaner 已读通知清理能力
type NotificationCleaner interface {
	CleanupRead(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationCleanupTask 每天凌晨删除超过保留期的已读通知
type NotificationCleanupTask struct {
	cleaner   NotificationCleaner
	retention time.Duration
	Cron      *cron.Cron
}

func NewNotificationCleanupTask(cleaner NotificationCleaner, retention time.Duration) *NotificationCleanupTask {
	return &NotificationCleanupTask{
		cleaner:   cleaner,
		retention: retention,
		Cron:      cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *NotificationCleanupTask) Start() error {
	// 每天 03:30
	if _, err := t.Cron.AddFunc("0 30 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.RunOnce(ctx)
	}); err != nil {
		return err
	}

	t.Cron.Start()
	zap.L().Info("[Task] 通知清理任务已启动", zap.Duration("retention", t.retention))
	return nil
}

// Stop 等待正在执行的任务结束
func (t *NotificationCleanupTask) Stop() {
	<-t.Cron.Stop().Done()
}

// RunOnce 执行一次清理，返回删除数量
func (t *NotificationCleanupTask) RunOnce(ctx context.Context) int64 {
	removed, err := t.cleaner.CleanupRead(ctx, t.retention)
	if err != nil {
		zap.L().Error("[Cron] 已读通知清理失败", zap.Error(err))
		return 0
	}
	if removed > 0 {
		zap.L().Info("[Cron] 已读通知清理完成", zap.Int64("removed", removed))
	}
	return removed
}
