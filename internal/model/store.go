package model

// Store 卖家店铺，与卖家用户一对一
type Store struct {
	BaseModel
	UserID        int64  `gorm:"uniqueIndex;not null" json:"user_id"`
	StoreName     string `gorm:"size:255;not null" json:"store_name"`
	Description   string `gorm:"type:text" json:"description"`
	StoreImageURL string `gorm:"size:1024" json:"store_image_url"`
	CoverImageURL string `gorm:"size:1024" json:"cover_image_url"`
	CBU           string `gorm:"column:cbu;size:64" json:"cbu"` // 收款账号
}

func (Store) TableName() string {
	return "stores"
}
