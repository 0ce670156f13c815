package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
)

// ==================== 商品信息组装 ====================

// productAssembler 批量补充评分、收藏状态与店铺摘要
// 商品列表、购物车、收藏 / 点赞列表共用
type productAssembler struct {
	reviewRepo   repository.ReviewRepository
	favoriteRepo repository.FavoriteRepository
	storeRepo    repository.StoreRepository
}

func newProductAssembler(
	reviewRepo repository.ReviewRepository,
	favoriteRepo repository.FavoriteRepository,
	storeRepo repository.StoreRepository,
) *productAssembler {
	return &productAssembler{
		reviewRepo:   reviewRepo,
		favoriteRepo: favoriteRepo,
		storeRepo:    storeRepo,
	}
}

// build viewerID 为 0 时不返回 is_favorite
func (a *productAssembler) build(ctx context.Context, products []model.Product, viewerID int64) ([]dto.ProductInfo, error) {
	if len(products) == 0 {
		return []dto.ProductInfo{}, nil
	}

	ids := make([]int64, len(products))
	sellerIDs := make([]int64, 0, len(products))
	seen := make(map[int64]bool)
	for i, p := range products {
		ids[i] = p.ID
		if !seen[p.SellerID] {
			seen[p.SellerID] = true
			sellerIDs = append(sellerIDs, p.SellerID)
		}
	}

	stats, err := a.reviewRepo.RatingStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	stores, err := a.storeRepo.GetByUserIDs(ctx, sellerIDs)
	if err != nil {
		return nil, err
	}
	var favorites map[int64]bool
	if viewerID > 0 {
		if favorites, err = a.favoriteRepo.FavoriteSet(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	list := make([]dto.ProductInfo, len(products))
	for i := range products {
		p := &products[i]
		info := toProductInfo(p)
		if st, ok := stats[p.ID]; ok {
			info.Rating = st.AvgRating
			info.RatingCount = st.RatingCount
		}
		if store, ok := stores[p.SellerID]; ok {
			info.Store = &dto.StoreSummary{
				StoreID:       store.ID,
				StoreName:     store.StoreName,
				StoreImageURL: store.StoreImageURL,
			}
		}
		if favorites != nil {
			fav := favorites[p.ID]
			info.IsFavorite = &fav
		}
		list[i] = info
	}
	return list, nil
}

func (a *productAssembler) buildOne(ctx context.Context, product *model.Product, viewerID int64) (*dto.ProductInfo, error) {
	list, err := a.build(ctx, []model.Product{*product}, viewerID)
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func toProductInfo(p *model.Product) dto.ProductInfo {
	return dto.ProductInfo{
		ID:          p.ID,
		SellerID:    p.SellerID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Paused:      p.Paused,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ==================== ProductService 商品服务 ====================

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	assembler   *productAssembler
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	reviewRepo repository.ReviewRepository,
	favoriteRepo repository.FavoriteRepository,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		storeRepo:   storeRepo,
		assembler:   newProductAssembler(reviewRepo, favoriteRepo, storeRepo),
	}
}

// List 公开商品列表
func (s *ProductService) List(ctx context.Context, q *dto.ProductListQuery, viewerID int64) (*dto.PageResult[dto.ProductInfo], error) {
	q.Normalize(20, 100)
	if q.Liked && viewerID == 0 {
		return nil, ErrLoginRequired
	}

	filter := repository.ProductFilter{
		Category: q.Category,
		Search:   q.Search,
		SellerID: q.SellerID,
		Page:     q.Page,
		PageSize: q.Limit,
	}
	if q.Liked {
		filter.FavoriteOf = viewerID
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.assembler.build(ctx, products, viewerID)
	if err != nil {
		return nil, err
	}
	return dto.NewPageResult(items, q.PageQuery, total), nil
}

// Get 商品详情，已下架商品仍可查看
func (s *ProductService) Get(ctx context.Context, id, viewerID int64) (*dto.ProductInfo, error) {
	product, err := s.productRepo.GetVisibleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return s.assembler.buildOne(ctx, product, viewerID)
}

// Create 卖家发布商品，尚未开店时自动创建店铺
func (s *ProductService) Create(ctx context.Context, seller *model.User, req *dto.CreateProductReq) (*dto.ProductInfo, error) {
	if !seller.IsSeller {
		return nil, ErrNotSeller
	}
	price := req.Price.Round(2)
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	store, err := s.ensureStore(ctx, seller, req.StoreName)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		SellerID:    seller.ID,
		StoreID:     store.ID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.assembler.buildOne(ctx, product, seller.ID)
}

// Update 部分更新，仅商品所有者
func (s *ProductService) Update(ctx context.Context, userID, id int64, req *dto.UpdateProductReq) (*dto.ProductInfo, error) {
	product, err := s.ownedProduct(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Price != nil {
		rounded := req.Price.Round(2)
		if !rounded.IsPositive() {
			return nil, ErrInvalidPrice
		}
		req.Price = &rounded
	}

	fields := req.Columns()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if err := s.productRepo.UpdateFields(ctx, product.ID, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, product.ID, userID)
}

// Delete 软删除，仅商品所有者
func (s *ProductService) Delete(ctx context.Context, userID, id int64) error {
	product, err := s.ownedProduct(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.productRepo.SoftDelete(ctx, product.ID)
}

func (s *ProductService) ownedProduct(ctx context.Context, userID, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetVisibleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.SellerID != userID {
		return nil, ErrProductForbidden
	}
	return product, nil
}

// ensureStore 获取卖家店铺，不存在时创建
func (s *ProductService) ensureStore(ctx context.Context, seller *model.User, storeName string) (*model.Store, error) {
	store, err := s.storeRepo.GetByUserID(ctx, seller.ID)
	if err != nil || store != nil {
		return store, err
	}

	if storeName == "" {
		storeName = defaultStoreName(seller)
	}
	store = &model.Store{UserID: seller.ID, StoreName: storeName}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		// 并发创建时以已存在的店铺为准
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.storeRepo.GetByUserID(ctx, seller.ID)
		}
		return nil, err
	}
	return store, nil
}

func defaultStoreName(user *model.User) string {
	if name := user.FullName(); name != "" {
		return name + "'s Store"
	}
	return fmt.Sprintf("Store #%d", user.ID)
}

// ==================== 错误定义 ====================

var (
	ErrProductNotFound    = errors.New("商品不存在")
	ErrProductForbidden   = errors.New("无权操作该商品")
	ErrProductUnavailable = errors.New("商品已下架或不可购买")
	ErrNotSeller          = errors.New("仅卖家可发布商品")
	ErrInvalidPrice       = errors.New("价格必须大于 0")
)
