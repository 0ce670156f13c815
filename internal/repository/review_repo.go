package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace_api/internal/model"
)

// ReviewRepository 评价仓储接口
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	GetDetail(ctx context.Context, id int64) (*ReviewRow, error)
	ExistsByUserAndProduct(ctx context.Context, userID, productID int64) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]ReviewRow, int64, error)
	ListByUser(ctx context.Context, userID int64) ([]ReviewRow, error)
	RatingStats(ctx context.Context, productIDs []int64) (map[int64]RatingStat, error)
}

// ReviewRow 评价 + 评价人姓名 + 商品名
type ReviewRow struct {
	model.Review
	FirstName   string
	LastName    string
	ProductName string
}

// RatingStat 商品评分统计
type RatingStat struct {
	ProductID   int64
	AvgRating   float64
	RatingCount int64
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓储
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepo) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &review, err
}

// detailQuery 评价联表查询
func (r *reviewRepo) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.*, users.first_name, users.last_name, products.name AS product_name").
		Joins("JOIN users ON users.id = reviews.user_id").
		Joins("JOIN products ON products.id = reviews.product_id")
}

func (r *reviewRepo) GetDetail(ctx context.Context, id int64) (*ReviewRow, error) {
	var rows []ReviewRow
	if err := r.detailQuery(ctx).Where("reviews.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *reviewRepo) ExistsByUserAndProduct(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Review{}).Where("id = ?", id).Updates(fields).Error
}

func (r *reviewRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Review{}, id).Error
}

// ListByProduct 商品评价，最新在前
func (r *reviewRepo) ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]ReviewRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(page, pageSize, 10)
	var rows []ReviewRow
	err := r.detailQuery(ctx).
		Where("reviews.product_id = ?", productID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// ListByUser 用户自己的评价
func (r *reviewRepo) ListByUser(ctx context.Context, userID int64) ([]ReviewRow, error) {
	var rows []ReviewRow
	err := r.detailQuery(ctx).
		Where("reviews.user_id = ?", userID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Scan(&rows).Error
	return rows, err
}

// RatingStats 批量统计平均分和评价数
func (r *reviewRepo) RatingStats(ctx context.Context, productIDs []int64) (map[int64]RatingStat, error) {
	result := make(map[int64]RatingStat, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	var stats []RatingStat
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("product_id, AVG(rating) AS avg_rating, COUNT(*) AS rating_count").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	for _, s := range stats {
		result[s.ProductID] = s
	}
	return result, nil
}
