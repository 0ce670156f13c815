package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
)

type fakeSubscriber struct {
	emails []string
	err    error
}

func (f *fakeSubscriber) Subscribe(_ context.Context, email string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.emails = append(f.emails, email)
	return "arn:aws:sns:us-east-1:000000000000:marketplace:" + email, nil
}

func TestNotificationService_ReadAndDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", false)
	other := env.createUser(t, "other@example.com", false)

	env.notificationSvc.Notify(env.ctx,
		model.Notification{UserID: owner.ID, Title: "a", Type: model.NotificationTypeOther},
		model.Notification{UserID: owner.ID, Title: "b", Type: model.NotificationTypeOther},
		model.Notification{UserID: owner.ID, Title: "c", Type: model.NotificationTypeOther},
	)

	unread, err := env.notificationSvc.UnreadCount(env.ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	list, err := env.notificationSvc.List(env.ctx, owner.ID, &dto.NotificationListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	first := list.Items[0].ID

	assert.ErrorIs(t, env.notificationSvc.MarkRead(env.ctx, other.ID, first), ErrNotificationNotFound)
	require.NoError(t, env.notificationSvc.MarkRead(env.ctx, owner.ID, first))

	unreadOnly, err := env.notificationSvc.List(env.ctx, owner.ID, &dto.NotificationListQuery{Unread: true})
	require.NoError(t, err)
	assert.Len(t, unreadOnly.Items, 2)

	updated, err := env.notificationSvc.MarkAllRead(env.ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	assert.ErrorIs(t, env.notificationSvc.Delete(env.ctx, other.ID, first), ErrNotificationNotFound)
	require.NoError(t, env.notificationSvc.Delete(env.ctx, owner.ID, first))
	assert.Equal(t, int64(2), env.count(t, &model.Notification{}))
}

func TestNotificationService_CleanupRead(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@example.com", false)

	env.notificationSvc.Notify(env.ctx,
		model.Notification{UserID: user.ID, Title: "old read", Read: true},
		model.Notification{UserID: user.ID, Title: "old unread"},
		model.Notification{UserID: user.ID, Title: "fresh read", Read: true},
	)
	old := time.Now().Add(-60 * 24 * time.Hour)
	require.NoError(t, env.db.Model(&model.Notification{}).
		Where("title IN ?", []string{"old read", "old unread"}).
		Update("created_at", old).Error)

	removed, err := env.notificationSvc.CleanupRead(env.ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, int64(2), env.count(t, &model.Notification{}))
}

func TestNotificationService_Subscribe(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.notificationSvc.Subscribe(env.ctx, "someone@example.com")
	assert.ErrorIs(t, err, ErrNotifyUnavailable, "未配置 SNS")

	sub := &fakeSubscriber{}
	svc := NewNotificationService(env.notifications, sub)
	arn, err := svc.Subscribe(env.ctx, "  Someone@Example.com ")
	require.NoError(t, err)
	assert.Contains(t, arn, "someone@example.com")
	assert.Equal(t, []string{"someone@example.com"}, sub.emails)

	failing := NewNotificationService(env.notifications, &fakeSubscriber{err: errors.New("throttled")})
	_, err = failing.Subscribe(env.ctx, "someone@example.com")
	assert.ErrorIs(t, err, ErrSubscribeFailed)
}
