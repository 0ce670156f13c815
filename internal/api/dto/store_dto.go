package dto

import "time"

// ==================== 店铺 ====================

// CreateStoreRequest 开店请求
type CreateStoreRequest struct {
	StoreName     string `json:"store_name" binding:"required,min=1,max=255"`
	Description   string `json:"description"`
	StoreImageURL string `json:"store_image_url" binding:"omitempty,max=1024"`
	CoverImageURL string `json:"cover_image_url" binding:"omitempty,max=1024"`
	CBU           string `json:"cbu" binding:"omitempty,max=64"`
}

// UpdateStoreRequest 店铺部分更新
type UpdateStoreRequest struct {
	StoreName     *string `json:"store_name" binding:"omitempty,min=1,max=255"`
	Description   *string `json:"description"`
	StoreImageURL *string `json:"store_image_url" binding:"omitempty,max=1024"`
	CoverImageURL *string `json:"cover_image_url" binding:"omitempty,max=1024"`
	CBU           *string `json:"cbu" binding:"omitempty,max=64"`
}

// Columns 转为列更新映射
func (r *UpdateStoreRequest) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if r.StoreName != nil {
		cols["store_name"] = *r.StoreName
	}
	if r.Description != nil {
		cols["description"] = *r.Description
	}
	if r.StoreImageURL != nil {
		cols["store_image_url"] = *r.StoreImageURL
	}
	if r.CoverImageURL != nil {
		cols["cover_image_url"] = *r.CoverImageURL
	}
	if r.CBU != nil {
		cols["cbu"] = *r.CBU
	}
	return cols
}

// StoreInfo 店铺信息
type StoreInfo struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	StoreName     string    `json:"store_name"`
	Description   string    `json:"description"`
	StoreImageURL string    `json:"store_image_url"`
	CoverImageURL string    `json:"cover_image_url"`
	CBU           string    `json:"cbu,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StoreSummary 商品附带的店铺摘要
type StoreSummary struct {
	StoreID       int64  `json:"store_id"`
	StoreName     string `json:"store_name"`
	StoreImageURL string `json:"store_image_url"`
}
