package repository

import (
	"context"

	"gorm.io/gorm"

	"marketplace_api/internal/model"
)

// LikeRepository 点赞仓储接口
type LikeRepository interface {
	Exists(ctx context.Context, userID, productID int64) (bool, error)
	Create(ctx context.Context, userID, productID int64) error
	Delete(ctx context.Context, userID, productID int64) (int64, error)
	CountByProduct(ctx context.Context, productID int64) (int64, error)
	ListProducts(ctx context.Context, userID int64, page, pageSize int) ([]model.Product, int64, error)
	ListUsers(ctx context.Context, productID int64, page, pageSize int) ([]model.User, int64, error)
}

type likeRepo struct {
	db *gorm.DB
}

// NewLikeRepository 创建点赞仓储
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepo{db: db}
}

func (r *likeRepo) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProductLike{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// Create 唯一索引冲突时返回 gorm.ErrDuplicatedKey（需开启 TranslateError）
func (r *likeRepo) Create(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).Create(&model.ProductLike{UserID: userID, ProductID: productID}).Error
}

func (r *likeRepo) Delete(ctx context.Context, userID, productID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.ProductLike{})
	return result.RowsAffected, result.Error
}

func (r *likeRepo) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProductLike{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

// ListProducts 用户点赞过的商品
func (r *likeRepo) ListProducts(ctx context.Context, userID int64, page, pageSize int) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Joins("JOIN product_likes ON product_likes.product_id = products.id").
		Where("product_likes.user_id = ? AND products.deleted = ?", userID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(page, pageSize, 20)
	var products []model.Product
	err := query.
		Order("product_likes.created_at DESC, product_likes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	return products, total, err
}

// ListUsers 点赞某商品的用户（排除已注销）
func (r *likeRepo) ListUsers(ctx context.Context, productID int64, page, pageSize int) ([]model.User, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN product_likes ON product_likes.user_id = users.id").
		Where("product_likes.product_id = ? AND users.deleted = ?", productID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(page, pageSize, 20)
	var users []model.User
	err := query.
		Order("product_likes.created_at DESC, product_likes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}
