package dto

// ProductIDRequest 收藏 / 点赞请求体
type ProductIDRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}
