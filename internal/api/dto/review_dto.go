package dto

import "time"

// ReviewListQuery 评价列表
type ReviewListQuery struct {
	PageQuery
	ProductID int64 `form:"product_id" binding:"required,min=1"`
}

// CreateReviewRequest 发表评价
type CreateReviewRequest struct {
	ProductID   int64  `json:"product_id" binding:"required,min=1"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateReviewRequest 评价部分更新
type UpdateReviewRequest struct {
	Rating      *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// Columns 转为列更新映射
func (r *UpdateReviewRequest) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if r.Rating != nil {
		cols["rating"] = *r.Rating
	}
	if r.Description != nil {
		cols["description"] = *r.Description
	}
	return cols
}

// ReviewInfo 评价（附评价人和商品名）
type ReviewInfo struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ProductID   int64     `json:"product_id"`
	Rating      int       `json:"rating"`
	Description string    `json:"description"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductReviews 商品评价列表，附平均分
type ProductReviews struct {
	Items         []ReviewInfo `json:"items"`
	Pagination    Pagination   `json:"pagination"`
	AverageRating float64      `json:"average_rating"`
	TotalReviews  int64        `json:"total_reviews"`
}
