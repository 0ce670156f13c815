package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/repository"
)

// FavoriteService 收藏
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	assembler    *productAssembler
}

// NewFavoriteService 创建收藏服务
func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	storeRepo repository.StoreRepository,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		assembler:    newProductAssembler(reviewRepo, favoriteRepo, storeRepo),
	}
}

// Toggle 切换收藏状态，返回切换后的状态
func (s *FavoriteService) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	product, err := s.productRepo.GetVisibleByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, ErrProductNotFound
	}

	removed, err := s.favoriteRepo.Delete(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if removed > 0 {
		return false, nil
	}

	if err := s.favoriteRepo.Create(ctx, userID, productID); err != nil {
		// 并发收藏，结果已是收藏状态
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// List 收藏的商品
func (s *FavoriteService) List(ctx context.Context, userID int64, q dto.PageQuery) (*dto.PageResult[dto.ProductInfo], error) {
	q.Normalize(20, 100)
	products, total, err := s.favoriteRepo.ListProducts(ctx, userID, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	items, err := s.assembler.build(ctx, products, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewPageResult(items, q, total), nil
}
