package dto

// NotificationListQuery 通知列表
type NotificationListQuery struct {
	PageQuery
	Unread bool `form:"unread"`
}

// SubscribeRequest 邮件订阅
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}
