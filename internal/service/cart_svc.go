package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
)

// priceTolerance 购物车快照价与当前价的允许误差
var priceTolerance = decimal.RequireFromString("0.01")

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	uow         *repository.UnitOfWork
	assembler   *productAssembler
}

// NewCartService 创建购物车服务
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	uow *repository.UnitOfWork,
	reviewRepo repository.ReviewRepository,
	favoriteRepo repository.FavoriteRepository,
	storeRepo repository.StoreRepository,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		uow:         uow,
		assembler:   newProductAssembler(reviewRepo, favoriteRepo, storeRepo),
	}
}

// Get 获取购物车，不存在时创建
func (s *CartService) Get(ctx context.Context, userID int64) (*dto.CartInfo, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	infos, err := s.toItemInfos(ctx, items, userID)
	if err != nil {
		return nil, err
	}

	result := &dto.CartInfo{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       infos,
		TotalAmount: decimal.Zero,
	}
	for _, item := range infos {
		result.TotalItems += item.Quantity
		result.TotalAmount = result.TotalAmount.Add(item.Subtotal)
	}
	return result, nil
}

// Update 整体替换购物车
// 不存在 / 已删除 / 下架 / 卖家已注销 / 售罄的商品跳过，超出库存的数量压到库存上限
func (s *CartService) Update(ctx context.Context, userID int64, req *dto.UpdateCartRequest) (*dto.UpdateCartResponse, error) {
	inputs := mergeCartInputs(req.Items)

	ids := make([]int64, len(inputs))
	for i, in := range inputs {
		ids[i] = in.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	adjustments := make([]dto.Adjustment, 0)
	items := make([]model.CartItem, 0, len(inputs))
	for _, in := range inputs {
		p := products[in.ProductID]
		switch {
		case p == nil || p.Deleted:
			adjustments = append(adjustments, dto.Adjustment{
				ProductID: in.ProductID,
				Message:   fmt.Sprintf("商品 #%d 不存在", in.ProductID),
			})
			continue
		case p.Paused || p.SellerDeleted:
			adjustments = append(adjustments, dto.Adjustment{
				ProductID: p.ID,
				Message:   fmt.Sprintf("商品 '%s' 暂不可售", p.Name),
			})
			continue
		case p.Stock <= 0:
			adjustments = append(adjustments, dto.Adjustment{
				ProductID: p.ID,
				Message:   fmt.Sprintf("商品 '%s' 已售罄", p.Name),
			})
			continue
		}

		quantity := in.Quantity
		if quantity > p.Stock {
			adjustments = append(adjustments, dto.Adjustment{
				ProductID: p.ID,
				Message:   fmt.Sprintf("商品 '%s' 数量由 %d 调整为 %d（库存上限）", p.Name, quantity, p.Stock),
			})
			quantity = p.Stock
		}
		items = append(items, model.CartItem{
			ProductID: p.ID,
			Quantity:  quantity,
			UnitPrice: p.Price,
		})
	}

	err = s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		cart, err := uow.Carts.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		return uow.Carts.ReplaceItems(ctx, cart.ID, items)
	})
	if err != nil {
		return nil, err
	}

	if len(adjustments) > 0 {
		zap.L().Warn("cart items adjusted",
			zap.Int64("user_id", userID),
			zap.Int("adjustments", len(adjustments)),
		)
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UpdateCartResponse{Items: cart.Items, Adjustments: adjustments}, nil
}

// Clear 清空购物车，购物车不存在时视为成功
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil || cart == nil {
		return err
	}
	return s.cartRepo.Clear(ctx, cart.ID)
}

// Validate 检查购物车是否仍可结算
func (s *CartService) Validate(ctx context.Context, userID int64) (*dto.CartValidation, error) {
	result := &dto.CartValidation{Valid: true, Errors: make([]dto.Adjustment, 0)}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return result, nil
	}
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		p := products[item.ProductID]
		var msg string
		switch {
		case p == nil || p.Deleted:
			msg = fmt.Sprintf("商品 #%d 已不存在", item.ProductID)
		case p.Paused || p.SellerDeleted:
			msg = fmt.Sprintf("商品 '%s' 暂不可售", p.Name)
		case p.Stock <= 0:
			msg = fmt.Sprintf("商品 '%s' 已售罄", p.Name)
		case item.Quantity > p.Stock:
			msg = fmt.Sprintf("商品 '%s' 库存不足，仅剩 %d 件", p.Name, p.Stock)
		case p.Price.Sub(item.UnitPrice).Abs().GreaterThan(priceTolerance):
			msg = fmt.Sprintf("商品 '%s' 价格已由 %s 变为 %s", p.Name, item.UnitPrice.StringFixed(2), p.Price.StringFixed(2))
		default:
			continue
		}
		result.Errors = append(result.Errors, dto.Adjustment{ProductID: item.ProductID, Message: msg})
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

// toItemInfos 购物车条目附带完整商品信息
func (s *CartService) toItemInfos(ctx context.Context, items []model.CartItem, viewerID int64) ([]dto.CartItemInfo, error) {
	products := make([]model.Product, 0, len(items))
	for _, item := range items {
		if item.Product != nil {
			products = append(products, *item.Product)
		}
	}
	built, err := s.assembler.build(ctx, products, viewerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*dto.ProductInfo, len(built))
	for i := range built {
		byID[built[i].ID] = &built[i]
	}

	infos := make([]dto.CartItemInfo, len(items))
	for i, item := range items {
		infos[i] = dto.CartItemInfo{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Product:   byID[item.ProductID],
			CreatedAt: item.CreatedAt,
		}
	}
	return infos, nil
}

// mergeCartInputs 合并重复商品，保持首次出现的顺序
func mergeCartInputs(inputs []dto.CartItemInput) []dto.CartItemInput {
	index := make(map[int64]int, len(inputs))
	merged := make([]dto.CartItemInput, 0, len(inputs))
	for _, in := range inputs {
		if i, ok := index[in.ProductID]; ok {
			merged[i].Quantity += in.Quantity
			continue
		}
		index[in.ProductID] = len(merged)
		merged = append(merged, in)
	}
	return merged
}
