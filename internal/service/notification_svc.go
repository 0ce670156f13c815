package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/config"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
)

// ==================== 邮件订阅 ====================

// EmailSubscriber 邮件订阅通道
type EmailSubscriber interface {
	Subscribe(ctx context.Context, email string) (string, error)
}

// SNSSubscriber 通过 SNS 主题订阅邮件通知
type SNSSubscriber struct {
	client   *sns.Client
	topicARN string
}

// NewSNSSubscriber 未配置 topic 时返回 nil
func NewSNSSubscriber(ctx context.Context, cfg config.NotifyConfig) (*SNSSubscriber, error) {
	if cfg.SNSTopicARN == "" {
		return nil, nil
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}
	return &SNSSubscriber{
		client:   sns.NewFromConfig(awsCfg),
		topicARN: cfg.SNSTopicARN,
	}, nil
}

// Subscribe 订阅确认邮件由 SNS 发出，返回订阅 ARN（待确认时为 pending confirmation）
func (s *SNSSubscriber) Subscribe(ctx context.Context, email string) (string, error) {
	out, err := s.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(s.topicARN),
		Protocol: aws.String("email"),
		Endpoint: aws.String(email),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.SubscriptionArn), nil
}

// ==================== NotificationService ====================

// NotificationService 站内通知服务
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	subscriber       EmailSubscriber
}

// NewNotificationService subscriber 可为 nil，此时订阅接口返回 503
func NewNotificationService(notificationRepo repository.NotificationRepository, subscriber EmailSubscriber) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		subscriber:       subscriber,
	}
}

// List 通知列表
func (s *NotificationService) List(ctx context.Context, userID int64, q *dto.NotificationListQuery) (*dto.PageResult[model.Notification], error) {
	q.Normalize(20, 100)
	list, total, err := s.notificationRepo.List(ctx, userID, q.Unread, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	return dto.NewPageResult(list, q.PageQuery, total), nil
}

// UnreadCount 未读数量
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkRead 标记已读
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.notificationRepo.MarkRead(ctx, id)
}

// MarkAllRead 全部已读，返回更新条数
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// Delete 删除通知
func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, id)
}

// Subscribe 邮件订阅
func (s *NotificationService) Subscribe(ctx context.Context, email string) (string, error) {
	if s.subscriber == nil {
		return "", ErrNotifyUnavailable
	}
	arn, err := s.subscriber.Subscribe(ctx, normalizeEmail(email))
	if err != nil {
		zap.L().Error("sns subscribe failed", zap.String("email", email), zap.Error(err))
		return "", ErrSubscribeFailed
	}
	return arn, nil
}

// Notify 写入通知，失败只记录日志
func (s *NotificationService) Notify(ctx context.Context, list ...model.Notification) {
	if len(list) == 0 {
		return
	}
	if err := s.notificationRepo.CreateBatch(ctx, list); err != nil {
		zap.L().Warn("create notifications failed", zap.Int("count", len(list)), zap.Error(err))
	}
}

// CleanupRead 删除早于保留期的已读通知
func (s *NotificationService) CleanupRead(ctx context.Context, retention time.Duration) (int64, error) {
	return s.notificationRepo.DeleteReadBefore(ctx, time.Now().Add(-retention))
}

func (s *NotificationService) owned(ctx context.Context, userID, id int64) (*model.Notification, error) {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil || n.UserID != userID {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

// ==================== 通知构造 ====================

// newSaleNotification 订单类通知，data 携带 sale_id 与 status
func newSaleNotification(userID int64, sale *model.Sale, productID int64, title, message string) model.Notification {
	n := model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    model.NotificationTypeSale,
		Data: datatypes.JSONMap{
			"sale_id": sale.ID,
			"status":  sale.Status,
		},
	}
	if productID > 0 {
		pid := productID
		n.ProductID = &pid
	}
	return n
}

func newReviewNotification(sellerID int64, product *model.Product, review *model.Review) model.Notification {
	pid := product.ID
	return model.Notification{
		UserID:    sellerID,
		Title:     "收到新评价",
		Message:   fmt.Sprintf("商品 '%s' 收到了 %d 星评价", product.Name, review.Rating),
		Type:      model.NotificationTypeReview,
		ProductID: &pid,
		Data: datatypes.JSONMap{
			"review_id": review.ID,
			"rating":    review.Rating,
		},
	}
}

// ==================== 错误定义 ====================

var (
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrNotifyUnavailable    = errors.New("邮件订阅未启用")
	ErrSubscribeFailed      = errors.New("订阅失败，请稍后重试")
)
