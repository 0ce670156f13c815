package model

import "gorm.io/datatypes"

// NotificationType 通知类型
const (
	NotificationTypeSale   = "SALE"
	NotificationTypeReview = "REVIEW"
	NotificationTypeOther  = "OTHER"
)

// Notification 站内通知
type Notification struct {
	BaseModel
	UserID    int64             `gorm:"index;not null" json:"user_id"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Message   string            `gorm:"type:text" json:"message"`
	Type      string            `gorm:"size:20;default:OTHER" json:"type"`
	ProductID *int64            `json:"product_id"`
	Read      bool              `gorm:"default:false;index" json:"read"`
	Data      datatypes.JSONMap `json:"data,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
