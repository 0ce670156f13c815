package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
)

// StoreService 店铺服务
type StoreService struct {
	storeRepo  repository.StoreRepository
	uow        *repository.UnitOfWork
	productSvc *ProductService
}

// NewStoreService 创建店铺服务
func NewStoreService(storeRepo repository.StoreRepository, uow *repository.UnitOfWork, productSvc *ProductService) *StoreService {
	return &StoreService{
		storeRepo:  storeRepo,
		uow:        uow,
		productSvc: productSvc,
	}
}

// List 店铺列表
func (s *StoreService) List(ctx context.Context, q dto.PageQuery) (*dto.PageResult[dto.StoreInfo], error) {
	q.Normalize(20, 100)
	stores, total, err := s.storeRepo.List(ctx, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreInfo, len(stores))
	for i := range stores {
		items[i] = *toStoreInfo(&stores[i], false)
	}
	return dto.NewPageResult(items, q, total), nil
}

// Create 开店，同时把用户标记为卖家
func (s *StoreService) Create(ctx context.Context, userID int64, req *dto.CreateStoreRequest) (*dto.StoreInfo, error) {
	existing, err := s.storeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrStoreExists
	}

	store := &model.Store{
		UserID:        userID,
		StoreName:     req.StoreName,
		Description:   req.Description,
		StoreImageURL: req.StoreImageURL,
		CoverImageURL: req.CoverImageURL,
		CBU:           req.CBU,
	}
	err = s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		if err := uow.Stores.Create(ctx, store); err != nil {
			return err
		}
		return uow.Users.SetSeller(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStoreExists
		}
		return nil, err
	}
	return toStoreInfo(store, true), nil
}

// Get 店铺详情
func (s *StoreService) Get(ctx context.Context, id, viewerID int64) (*dto.StoreInfo, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	return toStoreInfo(store, store.UserID == viewerID), nil
}

// Update 部分更新，仅店主
func (s *StoreService) Update(ctx context.Context, userID, id int64, req *dto.UpdateStoreRequest) (*dto.StoreInfo, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	if store.UserID != userID {
		return nil, ErrStoreForbidden
	}

	fields := req.Columns()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if err := s.storeRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, userID)
}

// Products 店铺商品，复用商品列表的过滤条件
func (s *StoreService) Products(ctx context.Context, id int64, q *dto.ProductListQuery, viewerID int64) (*dto.PageResult[dto.ProductInfo], error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	q.SellerID = store.UserID
	return s.productSvc.List(ctx, q, viewerID)
}

// toStoreInfo 收款账号仅店主可见
func toStoreInfo(store *model.Store, owner bool) *dto.StoreInfo {
	info := &dto.StoreInfo{
		ID:            store.ID,
		UserID:        store.UserID,
		StoreName:     store.StoreName,
		Description:   store.Description,
		StoreImageURL: store.StoreImageURL,
		CoverImageURL: store.CoverImageURL,
		CreatedAt:     store.CreatedAt,
		UpdatedAt:     store.UpdatedAt,
	}
	if owner {
		info.CBU = store.CBU
	}
	return info
}

// ==================== 错误定义 ====================

var (
	ErrStoreNotFound  = errors.New("店铺不存在")
	ErrStoreExists    = errors.New("该用户已开通店铺")
	ErrStoreForbidden = errors.New("无权操作该店铺")
)
