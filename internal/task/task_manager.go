package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marketplace_api/internal/middleware"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
type TaskManager struct {
	notificationTask *NotificationCleanupTask
	cartTask         *CartPruneTask
	housekeeping     *HousekeepingTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Notifications NotificationCleaner
	Carts         CartPruner
	Limiter       *middleware.IPRateLimiter
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	NotificationEnabled   bool
	NotificationRetention time.Duration

	CartPruneEnabled bool

	HousekeepingEnabled bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		NotificationEnabled:   true,
		NotificationRetention: 30 * 24 * time.Hour,
		CartPruneEnabled:      true,
		HousekeepingEnabled:   true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	// 已读通知清理
	if cfg.NotificationEnabled && deps.Notifications != nil {
		retention := cfg.NotificationRetention
		if retention <= 0 {
			retention = DefaultConfig().NotificationRetention
		}
		tm.notificationTask = NewNotificationCleanupTask(deps.Notifications, retention)
	}

	// 购物车失效条目
	if cfg.CartPruneEnabled && deps.Carts != nil {
		tm.cartTask = NewCartPruneTask(deps.Carts)
	}

	if cfg.HousekeepingEnabled {
		tm.housekeeping = NewHousekeepingTask(deps.Limiter)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	zap.L().Info("[TaskManager] 正在启动后台任务...")

	if tm.notificationTask != nil {
		if err := tm.notificationTask.Start(); err != nil {
			return err
		}
	}
	if tm.cartTask != nil {
		if err := tm.cartTask.Start(); err != nil {
			return err
		}
	}
	if tm.housekeeping != nil {
		if err := tm.housekeeping.Start(); err != nil {
			return err
		}
	}

	zap.L().Info("[TaskManager] 后台任务已全部启动")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	zap.L().Info("[TaskManager] 正在停止后台任务...")

	if tm.notificationTask != nil {
		tm.notificationTask.Stop()
	}
	if tm.cartTask != nil {
		tm.cartTask.Stop()
	}
	if tm.housekeeping != nil {
		tm.housekeeping.Stop()
	}

	zap.L().Info("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerNotificationCleanup 立即清理已读通知
func (tm *TaskManager) TriggerNotificationCleanup(ctx context.Context) (int64, error) {
	if tm.notificationTask == nil {
		return 0, ErrTaskDisabled
	}
	return tm.notificationTask.RunOnce(ctx), nil
}

// TriggerCartPrune 立即清理购物车失效条目
func (tm *TaskManager) TriggerCartPrune(ctx context.Context) (int64, error) {
	if tm.cartTask == nil {
		return 0, ErrTaskDisabled
	}
	return tm.cartTask.RunOnce(ctx), nil
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"notification_cleanup": tm.notificationTask != nil,
		"cart_prune":           tm.cartTask != nil,
		"housekeeping":         tm.housekeeping != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
