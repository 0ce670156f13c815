package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItemInput 购物车条目
type CartItemInput struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// UpdateCartRequest 整体替换购物车
type UpdateCartRequest struct {
	Items []CartItemInput `json:"items" binding:"dive"`
}

// Adjustment 写入购物车或结算时对条目的调整说明
type Adjustment struct {
	ProductID int64  `json:"product_id"`
	Message   string `json:"message"`
}

// CartItemInfo 购物车条目
type CartItemInfo struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   *ProductInfo    `json:"product,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CartInfo 购物车
type CartInfo struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Items       []CartItemInfo  `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// UpdateCartResponse 替换购物车结果
type UpdateCartResponse struct {
	Items       []CartItemInfo `json:"items"`
	Adjustments []Adjustment   `json:"adjustments"`
}

// CartValidation 购物车校验结果
type CartValidation struct {
	Valid  bool         `json:"valid"`
	Errors []Adjustment `json:"errors"`
}
