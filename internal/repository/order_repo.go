package repository

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace_api/internal/model"
)

// qb 统计类 SQL 构造器，占位符交给 gorm 按方言转换
var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// ==================== 过滤条件 ====================

// SaleFilter 订单过滤条件
type SaleFilter struct {
	BuyerID  int64
	SellerID int64 // 卖家视角：包含该卖家商品的订单
	Status   string
	Page     int
	PageSize int
}

// SellerSummaryRow 卖家销售汇总
type SellerSummaryRow struct {
	TotalOrders int64
	UnitsSold   int64
	Revenue     decimal.Decimal
	ByStatus    map[string]int64
}

// ==================== SaleRepository 订单仓库 ====================

// SaleRepository 订单仓库接口
type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	CreateItems(ctx context.Context, items []model.SaleProduct) error
	GetByID(ctx context.Context, id int64) (*model.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	UpdateStatus(ctx context.Context, id int64, from string, fields map[string]interface{}) (bool, error)

	HasSellerItem(ctx context.Context, saleID, sellerID int64) (bool, error)
	HasPurchased(ctx context.Context, userID, productID int64) (bool, error)

	// 统计
	SellerSummary(ctx context.Context, sellerID int64) (*SellerSummaryRow, error)
}

// ==================== 实现 ====================

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建订单仓库
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

// Create 仅写订单头，订单行由 CreateItems 写入
func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error
}

func (r *saleRepository) CreateItems(ctx context.Context, items []model.SaleProduct) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

// GetByID 订单详情（含订单行及商品）
func (r *saleRepository) GetByID(ctx context.Context, id int64) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

// List 买家或卖家视角的订单列表
// 卖家视角下订单行只保留该卖家的商品，分页按订单去重
func (r *saleRepository) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.BuyerID > 0 {
		query = query.Where("user_id = ?", filter.BuyerID)
	}
	if filter.SellerID > 0 {
		query = query.Where("id IN (?)",
			r.db.Model(&model.SaleProduct{}).Select("sale_id").Where("seller_id = ?", filter.SellerID))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	defaultSize := 20
	if filter.SellerID > 0 {
		defaultSize = 10
	}
	offset, limit := pageOffset(filter.Page, filter.PageSize, defaultSize)

	itemScope := func(db *gorm.DB) *gorm.DB {
		if filter.SellerID > 0 {
			db = db.Where("seller_id = ?", filter.SellerID)
		}
		return db.Order("id ASC")
	}

	var sales []model.Sale
	err := query.
		Preload("Items", itemScope).
		Preload("Items.Product").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

// UpdateStatus 条件更新：仅当当前状态仍为 from 时生效，返回是否更新成功
func (r *saleRepository) UpdateStatus(ctx context.Context, id int64, from string, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return result.RowsAffected > 0, result.Error
}

// HasSellerItem 订单是否包含该卖家的商品
func (r *saleRepository) HasSellerItem(ctx context.Context, saleID, sellerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SaleProduct{}).
		Where("sale_id = ? AND seller_id = ?", saleID, sellerID).
		Count(&count).Error
	return count > 0, err
}

// HasPurchased 用户是否有该商品的有效订单（取消 / 拒绝不计）
func (r *saleRepository) HasPurchased(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SaleProduct{}).
		Joins("JOIN sales ON sales.id = sale_products.sale_id").
		Where("sales.user_id = ? AND sale_products.product_id = ?", userID, productID).
		Where("sales.status NOT IN ?", []string{model.SaleStatusCancelled, model.SaleStatusRejected}).
		Count(&count).Error
	return count > 0, err
}

// SellerSummary 卖家销售汇总，取消 / 拒绝的订单不计入收入
func (r *saleRepository) SellerSummary(ctx context.Context, sellerID int64) (*SellerSummaryRow, error) {
	base := qb.Select().
		From("sale_products sp").
		Join("sales s ON s.id = sp.sale_id").
		Where(squirrel.Eq{"sp.seller_id": sellerID})

	totalsSQL, totalsArgs, err := base.
		Columns(
			"COUNT(DISTINCT sp.sale_id) AS total_orders",
			"COALESCE(SUM(sp.quantity), 0) AS units_sold",
			"COALESCE(SUM(sp.total_price), 0) AS revenue",
		).
		Where(squirrel.NotEq{"s.status": []string{model.SaleStatusCancelled, model.SaleStatusRejected}}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var totals struct {
		TotalOrders int64
		UnitsSold   int64
		Revenue     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(totalsSQL, totalsArgs...).Scan(&totals).Error; err != nil {
		return nil, err
	}

	statusSQL, statusArgs, err := base.
		Columns("s.status AS status", "COUNT(DISTINCT s.id) AS orders").
		GroupBy("s.status").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		Orders int64
	}
	if err := r.db.WithContext(ctx).Raw(statusSQL, statusArgs...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &SellerSummaryRow{
		TotalOrders: totals.TotalOrders,
		UnitsSold:   totals.UnitsSold,
		Revenue:     totals.Revenue,
		ByStatus:    make(map[string]int64, len(rows)),
	}
	for _, row := range rows {
		summary.ByStatus[row.Status] = row.Orders
	}
	return summary, nil
}
