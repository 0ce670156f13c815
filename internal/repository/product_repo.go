package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"marketplace_api/internal/model"
)

// ==================== 仓储接口 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetVisibleByID(ctx context.Context, id int64) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id int64) error
}

// ProductFilter 商品过滤条件
type ProductFilter struct {
	Category   string
	Search     string // 名称 / 描述，不区分大小写
	SellerID   int64
	FavoriteOf int64 // > 0 时只返回该用户收藏的商品
	Page       int
	PageSize   int
}

// ==================== 实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID 获取商品（包含已删除）
func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetVisibleByID 获取未删除且卖家未注销的商品
func (r *productRepo) GetVisibleByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		Where("seller_id IN (?)", r.activeSellers()).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs 批量读取当前价格与库存，包含已删除商品及已注销卖家的商品（SellerDeleted），由调用方判断
func (r *productRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error) {
	result := make(map[int64]*model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return result, nil
	}

	sellerIDs := make([]int64, 0, len(products))
	for i := range products {
		sellerIDs = append(sellerIDs, products[i].SellerID)
	}
	var deletedSellers []int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id IN ? AND deleted = ?", sellerIDs, true).
		Pluck("id", &deletedSellers).Error
	if err != nil {
		return nil, err
	}
	deleted := make(map[int64]bool, len(deletedSellers))
	for _, id := range deletedSellers {
		deleted[id] = true
	}

	for i := range products {
		products[i].SellerDeleted = deleted[products[i].SellerID]
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

// List 公开商品列表：未删除、未下架、卖家未注销
func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("deleted = ? AND paused = ?", false, false).
		Where("seller_id IN (?)", r.activeSellers())

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		keyword := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", keyword, keyword)
	}
	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.FavoriteOf > 0 {
		query = query.Where("id IN (?)",
			r.db.Model(&model.Favorite{}).Select("product_id").Where("user_id = ?", filter.FavoriteOf))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(filter.Page, filter.PageSize, 20)
	var products []model.Product
	err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields).Error
}

// SoftDelete 软删除商品
func (r *productRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("deleted", true).Error
}

// activeSellers 未注销用户 ID 子查询
func (r *productRepo) activeSellers() *gorm.DB {
	return r.db.Model(&model.User{}).Select("id").Where("deleted = ?", false)
}
