package task

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"marketplace_api/internal/middleware"
)

// limiterIdle 限流器条目空闲多久后回收
const limiterIdle = 10 * time.Minute

// HousekeepingTask 回收内存态数据：空闲的限流器条目、已过期的注销 Token
type HousekeepingTask struct {
	limiter *middleware.IPRateLimiter
	Cron    *cron.Cron
}

func NewHousekeepingTask(limiter *middleware.IPRateLimiter) *HousekeepingTask {
	return &HousekeepingTask{
		limiter: limiter,
		Cron:    cron.New(cron.WithSeconds()),
	}
}

// Start 每 5 分钟执行一次
func (t *HousekeepingTask) Start() error {
	if _, err := t.Cron.AddFunc("0 */5 * * * *", t.RunOnce); err != nil {
		return err
	}
	t.Cron.Start()
	zap.L().Info("[Task] 内存回收任务已启动")
	return nil
}

func (t *HousekeepingTask) Stop() {
	<-t.Cron.Stop().Done()
}

// RunOnce 执行一次回收
func (t *HousekeepingTask) RunOnce() {
	var visitors int
	if t.limiter != nil {
		visitors = t.limiter.Cleanup(limiterIdle)
	}
	tokens := middleware.PurgeRevokedTokens()

	if visitors > 0 || tokens > 0 {
		zap.L().Debug("[Cron] 内存回收完成",
			zap.Int("visitors", visitors),
			zap.Int("revoked_tokens", tokens),
		)
	}
}
