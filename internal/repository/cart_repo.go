package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace_api/internal/model"
)

// CartRepository 购物车仓储接口
type CartRepository interface {
	GetOrCreate(ctx context.Context, userID int64) (*model.Cart, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error)
	ReplaceItems(ctx context.Context, cartID int64, items []model.CartItem) error
	Clear(ctx context.Context, cartID int64) error
	DeleteOrphanItems(ctx context.Context) (int64, error)
}

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepo{db: db}
}

// GetOrCreate 获取用户购物车，不存在则创建
func (r *cartRepo) GetOrCreate(ctx context.Context, userID int64) (*model.Cart, error) {
	cart := model.Cart{UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return nil, err
	}
	if cart.ID != 0 {
		return &cart, nil
	}
	// 冲突时不会回填 ID，重新读取
	var existing model.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *cartRepo) GetByUserID(ctx context.Context, userID int64) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cart, err
}

// ListItems 购物车条目（附商品），按加入时间排序
func (r *cartRepo) ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

// ReplaceItems 清空后按 (cart_id, product_id) upsert，调用方负责放入事务
func (r *cartRepo) ReplaceItems(ctx context.Context, cartID int64, items []model.CartItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = cartID
	}
	return db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit_price", "updated_at"}),
		}).
		Create(&items).Error
}

// Clear 清空购物车
func (r *cartRepo) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}

// DeleteOrphanItems 删除指向已删除商品的条目
func (r *cartRepo) DeleteOrphanItems(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("product_id IN (?)", r.db.Model(&model.Product{}).Select("id").Where("deleted = ?", true)).
		Delete(&model.CartItem{})
	return result.RowsAffected, result.Error
}
