package model

import "github.com/shopspring/decimal"

// Product 商品
// stock 仅做展示与校验，下单不扣减
type Product struct {
	BaseModel
	SellerID    int64           `gorm:"index;not null" json:"seller_id"`
	StoreID     int64           `gorm:"index" json:"store_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	ImageURL    string          `gorm:"size:1024" json:"image_url"`
	Paused      bool            `gorm:"default:false" json:"paused"`
	Deleted     bool            `gorm:"default:false;index" json:"-"`

	// SellerDeleted 卖家已注销，由仓储按需填充，不落库
	SellerDeleted bool `gorm:"-" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// Purchasable 未删除、未下架且卖家未注销
func (p *Product) Purchasable() bool {
	return !p.Deleted && !p.Paused && !p.SellerDeleted
}
