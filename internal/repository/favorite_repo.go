package repository

import (
	"context"

	"gorm.io/gorm"

	"marketplace_api/internal/model"
)

// ==================== 收藏 ====================

// FavoriteRepository 收藏仓储接口
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, productID int64) (bool, error)
	Create(ctx context.Context, userID, productID int64) error
	Delete(ctx context.Context, userID, productID int64) (int64, error)
	FavoriteSet(ctx context.Context, userID int64, productIDs []int64) (map[int64]bool, error)
	ListProducts(ctx context.Context, userID int64, page, pageSize int) ([]model.Product, int64, error)
}

type favoriteRepo struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓储
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepo{db: db}
}

func (r *favoriteRepo) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepo) Create(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).Create(&model.Favorite{UserID: userID, ProductID: productID}).Error
}

func (r *favoriteRepo) Delete(ctx context.Context, userID, productID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.Favorite{})
	return result.RowsAffected, result.Error
}

// FavoriteSet 返回 productIDs 中被该用户收藏的商品
func (r *favoriteRepo) FavoriteSet(ctx context.Context, userID int64, productIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(productIDs))
	if userID == 0 || len(productIDs) == 0 {
		return set, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListProducts 用户收藏的未删除商品，最近收藏在前
func (r *favoriteRepo) ListProducts(ctx context.Context, userID int64, page, pageSize int) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ? AND products.deleted = ?", userID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(page, pageSize, 20)
	var products []model.Product
	err := query.
		Order("favorites.created_at DESC, favorites.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	return products, total, err
}
