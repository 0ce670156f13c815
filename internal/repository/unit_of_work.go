package repository

import (
	"context"

	"gorm.io/gorm"
)

// ==================== 事务支持 ====================

// UnitOfWork 跨仓储的事务工作单元
// 用于下单、购物车整体替换、开店等需要多条语句原子执行的场景
type UnitOfWork struct {
	db            *gorm.DB
	Users         UserRepository
	Stores        StoreRepository
	Products      ProductRepository
	Carts         CartRepository
	Sales         SaleRepository
	Notifications NotificationRepository
}

// NewUnitOfWork 创建工作单元
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return newUnitOfWork(db)
}

func newUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		db:            db,
		Users:         NewUserRepository(db),
		Stores:        NewStoreRepository(db),
		Products:      NewProductRepository(db),
		Carts:         NewCartRepository(db),
		Sales:         NewSaleRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// Transaction 执行事务，fn 返回错误时整体回滚
func (u *UnitOfWork) Transaction(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newUnitOfWork(tx))
	})
}
