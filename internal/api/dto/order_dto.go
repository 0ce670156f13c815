package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 下单 ====================

// CheckoutItem 下单商品
type CheckoutItem struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity" binding:"omitempty,min=1"` // 缺省为 1
}

// CheckoutRequest 下单请求，products 为空时使用购物车
type CheckoutRequest struct {
	Products []CheckoutItem `json:"products" binding:"omitempty,dive"`
	Note     string         `json:"note" binding:"omitempty,max=2000"`
	Address  string         `json:"address" binding:"omitempty,max=500"`
}

// CheckoutResponse 下单结果
type CheckoutResponse struct {
	Sale        *SaleInfo    `json:"sale"`
	Adjustments []Adjustment `json:"adjustments"`
}

// ==================== 订单查询 ====================

// SaleListQuery 订单列表筛选
type SaleListQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,max=20"`
}

// SaleItemInfo 订单行
type SaleItemInfo struct {
	ID                 int64           `json:"id"`
	ProductID          int64           `json:"product_id"`
	SellerID           int64           `json:"seller_id"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description"`
	ProductCategory    string          `json:"product_category"`
	ProductImageURL    string          `json:"product_image_url"`
}

// SaleInfo 订单
type SaleInfo struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	Note        string          `json:"note"`
	Address     string          `json:"address"`
	InvoiceID   *int64          `json:"invoice_id"`
	Products    []SaleItemInfo  `json:"products"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ==================== 状态流转 ====================

// UpdateSaleStatusRequest 修改订单状态
type UpdateSaleStatusRequest struct {
	Status    string `json:"status" binding:"required,oneof=pending confirmed paid preparing shipped delivered received cancelled rejected"`
	InvoiceID *int64 `json:"invoice_id" binding:"omitempty,min=1"`
}

// ==================== 卖家统计 ====================

// SellerSalesSummary 卖家销售汇总
type SellerSalesSummary struct {
	TotalOrders int64            `json:"total_orders"`
	UnitsSold   int64            `json:"units_sold"`
	Revenue     decimal.Decimal  `json:"revenue"`
	ByStatus    map[string]int64 `json:"by_status"`
}
