package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CartPruner 购物车失效条目清理能力
type CartPruner interface {
	DeleteOrphanItems(ctx context.Context) (int64, error)
}

// CartPruneTask 定期移除指向已删除商品的购物车条目
type CartPruneTask struct {
	pruner CartPruner
	Cron   *cron.Cron
}

func NewCartPruneTask(pruner CartPruner) *CartPruneTask {
	return &CartPruneTask{
		pruner: pruner,
		Cron:   cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务（每小时第 10 分钟）
func (t *CartPruneTask) Start() error {
	if _, err := t.Cron.AddFunc("0 10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		t.RunOnce(ctx)
	}); err != nil {
		return err
	}

	t.Cron.Start()
	zap.L().Info("[Task] 购物车清理任务已启动")
	return nil
}

func (t *CartPruneTask) Stop() {
	<-t.Cron.Stop().Done()
}

// RunOnce 执行一次清理
func (t *CartPruneTask) RunOnce(ctx context.Context) int64 {
	removed, err := t.pruner.DeleteOrphanItems(ctx)
	if err != nil {
		zap.L().Error("[Cron] 购物车失效条目清理失败", zap.Error(err))
		return 0
	}
	if removed > 0 {
		zap.L().Info("[Cron] 已移除失效购物车条目", zap.Int64("removed", removed))
	}
	return removed
}
