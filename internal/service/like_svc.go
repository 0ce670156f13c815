package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/repository"
)

// LikeService 商品点赞
type LikeService struct {
	likeRepo    repository.LikeRepository
	productRepo repository.ProductRepository
	assembler   *productAssembler
}

// NewLikeService 创建点赞服务
func NewLikeService(
	likeRepo repository.LikeRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	favoriteRepo repository.FavoriteRepository,
	storeRepo repository.StoreRepository,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		productRepo: productRepo,
		assembler:   newProductAssembler(reviewRepo, favoriteRepo, storeRepo),
	}
}

// ListMine 我点赞的商品
func (s *LikeService) ListMine(ctx context.Context, userID int64, q dto.PageQuery) (*dto.PageResult[dto.ProductInfo], error) {
	q.Normalize(20, 100)
	products, total, err := s.likeRepo.ListProducts(ctx, userID, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	items, err := s.assembler.build(ctx, products, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewPageResult(items, q, total), nil
}

// Check 是否已点赞
func (s *LikeService) Check(ctx context.Context, userID, productID int64) (bool, error) {
	return s.likeRepo.Exists(ctx, userID, productID)
}

// Like 点赞，商品须在售
func (s *LikeService) Like(ctx context.Context, userID, productID int64) error {
	if err := s.ensureLikeable(ctx, productID); err != nil {
		return err
	}
	if err := s.likeRepo.Create(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyLiked
		}
		return err
	}
	return nil
}

// Unlike 取消点赞
func (s *LikeService) Unlike(ctx context.Context, userID, productID int64) error {
	removed, err := s.likeRepo.Delete(ctx, userID, productID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotLiked
	}
	return nil
}

// Toggle 切换点赞，返回切换后的状态
func (s *LikeService) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	removed, err := s.likeRepo.Delete(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if removed > 0 {
		return false, nil
	}
	if err := s.Like(ctx, userID, productID); err != nil {
		if errors.Is(err, ErrAlreadyLiked) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// Count 点赞数
func (s *LikeService) Count(ctx context.Context, productID int64) (int64, error) {
	return s.likeRepo.CountByProduct(ctx, productID)
}

// Users 点赞用户（公开信息）
func (s *LikeService) Users(ctx context.Context, productID int64, q dto.PageQuery) (*dto.PageResult[dto.PublicUser], error) {
	q.Normalize(20, 100)
	users, total, err := s.likeRepo.ListUsers(ctx, productID, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PublicUser, len(users))
	for i := range users {
		items[i] = *toPublicUser(&users[i])
	}
	return dto.NewPageResult(items, q, total), nil
}

func (s *LikeService) ensureLikeable(ctx context.Context, productID int64) error {
	product, err := s.productRepo.GetVisibleByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if product.Paused {
		return ErrProductUnavailable
	}
	return nil
}

// ==================== 错误定义 ====================

var (
	ErrAlreadyLiked = errors.New("已经点赞过该商品")
	ErrNotLiked     = errors.New("尚未点赞该商品")
)
