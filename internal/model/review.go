package model

// Review 商品评价，每个用户对每个商品仅一条
type Review struct {
	BaseModel
	UserID      int64  `gorm:"not null;uniqueIndex:idx_review_user_product" json:"user_id"`
	ProductID   int64  `gorm:"not null;uniqueIndex:idx_review_user_product;index" json:"product_id"`
	Rating      int    `gorm:"not null" json:"rating"`
	Description string `gorm:"type:text" json:"description"`
}

func (Review) TableName() string {
	return "reviews"
}
