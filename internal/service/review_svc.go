package service

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
)

// ReviewService 商品评价服务
type ReviewService struct {
	reviewRepo      repository.ReviewRepository
	productRepo     repository.ProductRepository
	saleRepo        repository.SaleRepository
	notifier        *NotificationService
	requirePurchase bool
}

// NewReviewService requirePurchase 为 true 时仅购买过的用户可评价
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	notifier *NotificationService,
	requirePurchase bool,
) *ReviewService {
	return &ReviewService{
		reviewRepo:      reviewRepo,
		productRepo:     productRepo,
		saleRepo:        saleRepo,
		notifier:        notifier,
		requirePurchase: requirePurchase,
	}
}

// ListByProduct 商品评价列表，附平均分与总数
func (s *ReviewService) ListByProduct(ctx context.Context, q *dto.ReviewListQuery) (*dto.ProductReviews, error) {
	q.Normalize(10, 50)

	product, err := s.productRepo.GetVisibleByID(ctx, q.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	rows, total, err := s.reviewRepo.ListByProduct(ctx, q.ProductID, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviewRepo.RatingStats(ctx, []int64{q.ProductID})
	if err != nil {
		return nil, err
	}

	items := make([]dto.ReviewInfo, len(rows))
	for i := range rows {
		items[i] = toReviewInfo(&rows[i])
	}
	return &dto.ProductReviews{
		Items:         items,
		Pagination:    dto.NewPagination(q.Page, q.Limit, total),
		AverageRating: math.Round(stats[q.ProductID].AvgRating*100) / 100,
		TotalReviews:  total,
	}, nil
}

// ListMine 当前用户的评价
func (s *ReviewService) ListMine(ctx context.Context, userID int64) ([]dto.ReviewInfo, error) {
	rows, err := s.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReviewInfo, len(rows))
	for i := range rows {
		items[i] = toReviewInfo(&rows[i])
	}
	return items, nil
}

// Get 评价详情
func (s *ReviewService) Get(ctx context.Context, id int64) (*dto.ReviewInfo, error) {
	row, err := s.reviewRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrReviewNotFound
	}
	info := toReviewInfo(row)
	return &info, nil
}

// Create 发表评价，每个用户每个商品一条
func (s *ReviewService) Create(ctx context.Context, userID int64, req *dto.CreateReviewRequest) (*dto.ReviewInfo, error) {
	product, err := s.productRepo.GetVisibleByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	exists, err := s.reviewRepo.ExistsByUserAndProduct(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	if s.requirePurchase {
		purchased, err := s.saleRepo.HasPurchased(ctx, userID, req.ProductID)
		if err != nil {
			return nil, err
		}
		if !purchased {
			return nil, ErrReviewNotPurchased
		}
	}

	review := &model.Review{
		UserID:      userID,
		ProductID:   req.ProductID,
		Rating:      req.Rating,
		Description: req.Description,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	if product.SellerID != userID {
		s.notifier.Notify(ctx, newReviewNotification(product.SellerID, product, review))
	}
	return s.Get(ctx, review.ID)
}

// Update 仅作者本人，其他人视为不存在
func (s *ReviewService) Update(ctx context.Context, userID, id int64, req *dto.UpdateReviewRequest) (*dto.ReviewInfo, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	fields := req.Columns()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if err := s.reviewRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete 仅作者本人
func (s *ReviewService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.reviewRepo.Delete(ctx, id)
}

func (s *ReviewService) owned(ctx context.Context, userID, id int64) (*model.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review == nil || review.UserID != userID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func toReviewInfo(row *repository.ReviewRow) dto.ReviewInfo {
	return dto.ReviewInfo{
		ID:          row.ID,
		UserID:      row.UserID,
		ProductID:   row.ProductID,
		Rating:      row.Rating,
		Description: row.Description,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		ProductName: row.ProductName,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// ==================== 错误定义 ====================

var (
	ErrReviewNotFound     = errors.New("评价不存在")
	ErrReviewExists       = errors.New("您已评价过该商品")
	ErrReviewNotPurchased = errors.New("购买后才能评价该商品")
)
