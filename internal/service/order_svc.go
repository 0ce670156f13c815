package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
	"marketplace_api/pkg/metrics"
)

// ==================== SaleService 订单服务 ====================

// SaleService 下单与订单状态流转
type SaleService struct {
	uow      *repository.UnitOfWork
	saleRepo repository.SaleRepository
	cartRepo repository.CartRepository
	notifier *NotificationService
}

// NewSaleService 创建订单服务
func NewSaleService(
	uow *repository.UnitOfWork,
	saleRepo repository.SaleRepository,
	cartRepo repository.CartRepository,
	notifier *NotificationService,
) *SaleService {
	return &SaleService{
		uow:      uow,
		saleRepo: saleRepo,
		cartRepo: cartRepo,
		notifier: notifier,
	}
}

// checkoutLine 待下单的一行
type checkoutLine struct {
	ProductID int64
	Quantity  int
}

// ==================== 下单 ====================

// Checkout 下单：请求未指定商品时使用购物车
// 校验、写订单、写订单行、清空购物车、通知卖家在同一事务内完成
func (s *SaleService) Checkout(ctx context.Context, buyerID int64, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	lines, err := s.checkoutLines(ctx, buyerID, req)
	if err != nil {
		metrics.ObserveCheckout("rejected")
		return nil, err
	}

	var (
		sale        *model.Sale
		adjustments = make([]dto.Adjustment, 0)
	)
	err = s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		ids := make([]int64, len(lines))
		for i, line := range lines {
			ids[i] = line.ProductID
		}
		// 以数据库中的当前价格与库存为准
		products, err := uow.Products.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		items := make([]model.SaleProduct, 0, len(lines))
		total := decimal.Zero
		for _, line := range lines {
			p := products[line.ProductID]
			switch {
			case p == nil:
				return fmt.Errorf("%w: #%d", ErrProductNotFound, line.ProductID)
			case !p.Purchasable():
				return fmt.Errorf("%w: '%s'", ErrProductUnavailable, p.Name)
			case p.SellerID == buyerID:
				return fmt.Errorf("%w: '%s'", ErrOwnProduct, p.Name)
			case p.Stock <= 0:
				return fmt.Errorf("%w: '%s'", ErrOutOfStock, p.Name)
			}

			quantity := line.Quantity
			if quantity > p.Stock {
				adjustments = append(adjustments, dto.Adjustment{
					ProductID: p.ID,
					Message:   fmt.Sprintf("商品 '%s' 数量由 %d 调整为 %d（库存上限）", p.Name, quantity, p.Stock),
				})
				quantity = p.Stock
			}

			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(quantity)))
			total = total.Add(lineTotal)
			items = append(items, model.SaleProduct{
				ProductID:  p.ID,
				SellerID:   p.SellerID,
				Quantity:   quantity,
				UnitPrice:  p.Price,
				TotalPrice: lineTotal,
			})
		}

		sale = &model.Sale{
			UserID:      buyerID,
			TotalAmount: total,
			Status:      model.SaleStatusPending,
			Note:        req.Note,
			Address:     req.Address,
		}
		if err := uow.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := uow.Sales.CreateItems(ctx, items); err != nil {
			return err
		}

		cart, err := uow.Carts.GetByUserID(ctx, buyerID)
		if err != nil {
			return err
		}
		if cart != nil {
			if err := uow.Carts.Clear(ctx, cart.ID); err != nil {
				return err
			}
		}

		return uow.Notifications.CreateBatch(ctx, newSaleCreatedNotifications(sale, items))
	})
	if err != nil {
		metrics.ObserveCheckout("failed")
		return nil, err
	}
	metrics.ObserveCheckout("success")

	if len(adjustments) > 0 {
		zap.L().Warn("checkout quantities clamped",
			zap.Int64("user_id", buyerID),
			zap.Int64("sale_id", sale.ID),
			zap.Int("adjustments", len(adjustments)),
		)
	}

	created, err := s.saleRepo.GetByID(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutResponse{Sale: toSaleInfo(created, 0), Adjustments: adjustments}, nil
}

// checkoutLines 请求商品优先，其次购物车；同一商品合并数量
func (s *SaleService) checkoutLines(ctx context.Context, buyerID int64, req *dto.CheckoutRequest) ([]checkoutLine, error) {
	var raw []checkoutLine
	if len(req.Products) > 0 {
		for _, item := range req.Products {
			quantity := item.Quantity
			if quantity < 1 {
				quantity = 1
			}
			raw = append(raw, checkoutLine{ProductID: item.ProductID, Quantity: quantity})
		}
	} else {
		cart, err := s.cartRepo.GetByUserID(ctx, buyerID)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			return nil, ErrCartEmpty
		}
		items, err := s.cartRepo.ListItems(ctx, cart.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			raw = append(raw, checkoutLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	if len(raw) == 0 {
		return nil, ErrCartEmpty
	}

	index := make(map[int64]int, len(raw))
	lines := make([]checkoutLine, 0, len(raw))
	for _, line := range raw {
		if i, ok := index[line.ProductID]; ok {
			lines[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(lines)
		lines = append(lines, line)
	}
	return lines, nil
}

// ==================== 查询 ====================

// List 买家订单
func (s *SaleService) List(ctx context.Context, buyerID int64, q *dto.SaleListQuery) (*dto.PageResult[dto.SaleInfo], error) {
	q.Normalize(20, 100)
	return s.list(ctx, repository.SaleFilter{BuyerID: buyerID}, q, 0)
}

// ListSeller 卖家视角：包含自己商品的订单，只展示自己的订单行
func (s *SaleService) ListSeller(ctx context.Context, sellerID int64, q *dto.SaleListQuery) (*dto.PageResult[dto.SaleInfo], error) {
	q.Normalize(10, 100)
	return s.list(ctx, repository.SaleFilter{SellerID: sellerID}, q, sellerID)
}

func (s *SaleService) list(ctx context.Context, filter repository.SaleFilter, q *dto.SaleListQuery, sellerID int64) (*dto.PageResult[dto.SaleInfo], error) {
	if q.Status != "" && !model.IsValidSaleStatus(q.Status) {
		return nil, ErrInvalidStatus
	}
	filter.Status = q.Status
	filter.Page = q.Page
	filter.PageSize = q.Limit

	sales, total, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleInfo, len(sales))
	for i := range sales {
		items[i] = *toSaleInfo(&sales[i], sellerID)
	}
	return dto.NewPageResult(items, q.PageQuery, total), nil
}

// Get 订单详情：买家看全部，卖家只看自己的订单行
func (s *SaleService) Get(ctx context.Context, userID, id int64) (*dto.SaleInfo, error) {
	sale, actor, err := s.loadForActor(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if actor == model.SaleActorSeller {
		return toSaleInfo(sale, userID), nil
	}
	return toSaleInfo(sale, 0), nil
}

// Summary 卖家销售汇总
func (s *SaleService) Summary(ctx context.Context, sellerID int64) (*dto.SellerSalesSummary, error) {
	row, err := s.saleRepo.SellerSummary(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return &dto.SellerSalesSummary{
		TotalOrders: row.TotalOrders,
		UnitsSold:   row.UnitsSold,
		Revenue:     row.Revenue,
		ByStatus:    row.ByStatus,
	}, nil
}

// ==================== 状态流转 ====================

// UpdateStatus 按状态机流转，操作方必须与目标状态要求一致
func (s *SaleService) UpdateStatus(ctx context.Context, userID, id int64, req *dto.UpdateSaleStatusRequest) (*dto.SaleInfo, error) {
	if !model.IsValidSaleStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	sale, actor, err := s.loadForActor(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if sale.IsFinished() {
		return nil, fmt.Errorf("%w: 订单已结束 (%s)", ErrInvalidTransition, sale.Status)
	}
	required, ok := sale.NextActor(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sale.Status, req.Status)
	}
	if required != actor {
		return nil, ErrSaleForbidden
	}

	fields := map[string]interface{}{"status": req.Status}
	if req.Status == model.SaleStatusPaid {
		if req.InvoiceID == nil {
			return nil, ErrInvoiceRequired
		}
		fields["invoice_id"] = *req.InvoiceID
	}

	if err := s.transition(ctx, sale, actor, fields); err != nil {
		if errors.Is(err, errStaleStatus) {
			return nil, ErrStatusConflict
		}
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Cancel 买家取消，仅待确认订单
func (s *SaleService) Cancel(ctx context.Context, userID, id int64) (*dto.SaleInfo, error) {
	sale, actor, err := s.loadForActor(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if actor != model.SaleActorBuyer {
		return nil, ErrSaleForbidden
	}
	if !sale.CanCancel() {
		return nil, ErrSaleNotCancellable
	}

	fields := map[string]interface{}{"status": model.SaleStatusCancelled}
	if err := s.transition(ctx, sale, actor, fields); err != nil {
		if errors.Is(err, errStaleStatus) {
			return nil, ErrSaleNotCancellable
		}
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// transition 条件更新状态并通知另一方
func (s *SaleService) transition(ctx context.Context, sale *model.Sale, actor model.SaleActor, fields map[string]interface{}) error {
	from := sale.Status
	updated, err := s.saleRepo.UpdateStatus(ctx, sale.ID, from, fields)
	if err != nil {
		return err
	}
	if !updated {
		return errStaleStatus
	}

	sale.Status = fields["status"].(string)
	metrics.ObserveSaleTransition(sale.Status)
	zap.L().Info("sale status changed",
		zap.Int64("sale_id", sale.ID),
		zap.String("from", from),
		zap.String("to", sale.Status),
		zap.String("actor", string(actor)),
	)

	s.notifier.Notify(ctx, newSaleStatusNotifications(sale, actor)...)
	return nil
}

// loadForActor 加载订单并判断当前用户身份，无关用户视为不存在
func (s *SaleService) loadForActor(ctx context.Context, userID, id int64) (*model.Sale, model.SaleActor, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if sale == nil {
		return nil, "", ErrSaleNotFound
	}
	if sale.UserID == userID {
		return sale, model.SaleActorBuyer, nil
	}
	isSeller, err := s.saleRepo.HasSellerItem(ctx, id, userID)
	if err != nil {
		return nil, "", err
	}
	if !isSeller {
		return nil, "", ErrSaleNotFound
	}
	return sale, model.SaleActorSeller, nil
}

// ==================== 通知 ====================

// newSaleCreatedNotifications 每个卖家一条，product_id 取该卖家的第一行商品
func newSaleCreatedNotifications(sale *model.Sale, items []model.SaleProduct) []model.Notification {
	seen := make(map[int64]bool)
	list := make([]model.Notification, 0)
	for _, item := range items {
		if seen[item.SellerID] {
			continue
		}
		seen[item.SellerID] = true
		list = append(list, newSaleNotification(item.SellerID, sale, item.ProductID,
			"新订单",
			fmt.Sprintf("订单 #%d 包含您的商品，请及时确认", sale.ID),
		))
	}
	return list
}

// newSaleStatusNotifications 买家操作通知各卖家，卖家操作通知买家
func newSaleStatusNotifications(sale *model.Sale, actor model.SaleActor) []model.Notification {
	title := "订单状态更新"
	message := fmt.Sprintf("订单 #%d 状态已变更为 %s", sale.ID, sale.Status)

	if actor == model.SaleActorSeller {
		var productID int64
		if len(sale.Items) > 0 {
			productID = sale.Items[0].ProductID
		}
		return []model.Notification{newSaleNotification(sale.UserID, sale, productID, title, message)}
	}

	seen := make(map[int64]bool)
	list := make([]model.Notification, 0)
	for _, item := range sale.Items {
		if seen[item.SellerID] {
			continue
		}
		seen[item.SellerID] = true
		list = append(list, newSaleNotification(item.SellerID, sale, item.ProductID, title, message))
	}
	return list
}

// ==================== 转换 ====================

// toSaleInfo sellerID > 0 时只保留该卖家的订单行
func toSaleInfo(sale *model.Sale, sellerID int64) *dto.SaleInfo {
	info := &dto.SaleInfo{
		ID:          sale.ID,
		UserID:      sale.UserID,
		TotalAmount: sale.TotalAmount,
		Status:      sale.Status,
		Note:        sale.Note,
		Address:     sale.Address,
		InvoiceID:   sale.InvoiceID,
		Products:    make([]dto.SaleItemInfo, 0, len(sale.Items)),
		CreatedAt:   sale.CreatedAt,
		UpdatedAt:   sale.UpdatedAt,
	}
	for _, item := range sale.Items {
		if sellerID > 0 && item.SellerID != sellerID {
			continue
		}
		line := dto.SaleItemInfo{
			ID:         item.ID,
			ProductID:  item.ProductID,
			SellerID:   item.SellerID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
		if p := item.Product; p != nil {
			line.ProductName = p.Name
			line.ProductDescription = p.Description
			line.ProductCategory = p.Category
			line.ProductImageURL = p.ImageURL
		}
		info.Products = append(info.Products, line)
	}
	return info
}

// ==================== 错误定义 ====================

// errStaleStatus 条件更新未命中，订单已被并发修改
var errStaleStatus = errors.New("sale status changed concurrently")

var (
	ErrCartEmpty          = errors.New("购物车为空")
	ErrOwnProduct         = errors.New("不能购买自己的商品")
	ErrOutOfStock         = errors.New("商品库存不足")
	ErrSaleNotFound       = errors.New("订单不存在")
	ErrInvalidStatus      = errors.New("无效的订单状态")
	ErrInvalidTransition  = errors.New("不允许的状态变更")
	ErrSaleForbidden      = errors.New("无权执行该操作")
	ErrInvoiceRequired    = errors.New("付款需要提供 invoice_id")
	ErrStatusConflict     = errors.New("订单状态已变化，请刷新后重试")
	ErrSaleNotCancellable = errors.New("仅待确认的订单可以取消")
)
