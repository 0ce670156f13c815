package model

import "github.com/shopspring/decimal"

// Cart 购物车，每个用户一个
type Cart struct {
	BaseModel
	UserID int64 `gorm:"uniqueIndex;not null" json:"user_id"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem 购物车条目
// UnitPrice 为加入时的价格快照，仅用于校验价格变动，结算时以商品当前价格为准
type CartItem struct {
	BaseModel
	CartID    int64           `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID int64           `gorm:"not null;uniqueIndex:idx_cart_product;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
