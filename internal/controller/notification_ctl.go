package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/middleware"
	"marketplace_api/internal/service"
)

// NotificationController 站内通知
type NotificationController struct {
	notificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// ListNotifications 通知列表
// @Summary 通知列表
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "只看未读"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications [get]
func (ctrl *NotificationController) ListNotifications(c *gin.Context) {
	var q dto.NotificationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.notificationService.List(c.Request.Context(), middleware.GetUserID(c), &q)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", result)
}

// UnreadCount 未读数
// @Summary 未读通知数
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications/unread-count [get]
func (ctrl *NotificationController) UnreadCount(c *gin.Context) {
	count, err := ctrl.notificationService.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", gin.H{"count": count})
}

// MarkRead 标记已读
// @Summary 标记通知已读
// @Tags Notifications
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications/{id}/read [patch]
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.notificationService.MarkRead(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "已标记为已读"})
}

// MarkAllRead 全部已读
// @Summary 全部标记已读
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications/read-all [patch]
func (ctrl *NotificationController) MarkAllRead(c *gin.Context) {
	updated, err := ctrl.notificationService.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "success", gin.H{"updated": updated})
}

// DeleteNotification 删除通知
// @Summary 删除通知
// @Tags Notifications
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications/{id} [delete]
func (ctrl *NotificationController) DeleteNotification(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.notificationService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "通知已删除"})
}

// Subscribe 邮件订阅
// @Summary 订阅邮件通知 (SNS)
// @Tags Notifications
// @Accept json
// @Param request body dto.SubscribeRequest true "邮箱"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/notifications/subscribe [post]
func (ctrl *NotificationController) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	arn, err := ctrl.notificationService.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, "请查收确认邮件", gin.H{"subscription_arn": arn})
}
