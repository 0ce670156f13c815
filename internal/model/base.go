package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 金额以数字形式输出，而不是字符串
	decimal.MarshalJSONWithoutQuotes = true
}

type BaseModel struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllModels 需要建表的全部模型，顺序即依赖顺序
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Store{}, &Product{},
		&Cart{}, &CartItem{},
		&Sale{}, &SaleProduct{},
		&Review{}, &Favorite{}, &ProductLike{},
		&Notification{}, &Image{},
	}
}
