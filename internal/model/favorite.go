package model

import "time"

// Favorite 收藏（商品列表 liked=true 过滤使用）
type Favorite struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_favorite_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_favorite_user_product;index" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ProductLike 点赞，独立于收藏
type ProductLike struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_like_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_like_user_product;index" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProductLike) TableName() string {
	return "product_likes"
}
