package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 请求 DTO ====================

// ProductListQuery 商品列表筛选
type ProductListQuery struct {
	PageQuery
	Category string `form:"category" binding:"omitempty,max=100"`
	Search   string `form:"search" binding:"omitempty,max=255"`
	SellerID int64  `form:"seller_id" binding:"omitempty,min=1"`
	Liked    bool   `form:"liked"` // 仅返回当前用户收藏的商品，需登录
}

// CreateProductReq 创建商品请求
type CreateProductReq struct {
	Name        string          `json:"name" binding:"required,min=1,max=255"`
	Description string          `json:"description"`
	Category    string          `json:"category" binding:"omitempty,max=100"`
	Price       decimal.Decimal `json:"price"` // > 0，在 service 层校验
	Stock       int             `json:"stock" binding:"min=0"`
	ImageURL    string          `json:"image_url" binding:"omitempty,max=1024"`

	// 卖家尚未开店时用于自动创建店铺
	StoreName string `json:"store_name" binding:"omitempty,max=255"`
}

// UpdateProductReq 商品部分更新，nil 字段不修改
type UpdateProductReq struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=1024"`
	Paused      *bool            `json:"paused"`
}

// Columns 转为列更新映射
func (r *UpdateProductReq) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if r.Name != nil {
		cols["name"] = *r.Name
	}
	if r.Description != nil {
		cols["description"] = *r.Description
	}
	if r.Category != nil {
		cols["category"] = *r.Category
	}
	if r.Price != nil {
		cols["price"] = *r.Price
	}
	if r.Stock != nil {
		cols["stock"] = *r.Stock
	}
	if r.ImageURL != nil {
		cols["image_url"] = *r.ImageURL
	}
	if r.Paused != nil {
		cols["paused"] = *r.Paused
	}
	return cols
}

// ==================== 响应 DTO ====================

// ProductInfo 商品信息（含评分和收藏状态）
type ProductInfo struct {
	ID          int64           `json:"id"`
	SellerID    int64           `json:"seller_id"`
	StoreID     int64           `json:"store_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
	Paused      bool            `json:"paused"`

	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
	IsFavorite  *bool   `json:"is_favorite,omitempty"` // 未登录时不返回

	Store *StoreSummary `json:"store,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
