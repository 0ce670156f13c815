package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace_api/internal/model"
)

// StoreRepository 店铺仓库接口
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Store, error)
	GetByUserIDs(ctx context.Context, userIDs []int64) (map[int64]*model.Store, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	List(ctx context.Context, page, pageSize int) ([]model.Store, int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓库
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepository) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).First(&store, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &store, err
}

func (r *storeRepository) GetByUserID(ctx context.Context, userID int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &store, err
}

// GetByUserIDs 批量获取卖家店铺，key 为 user_id
func (r *storeRepository) GetByUserIDs(ctx context.Context, userIDs []int64) (map[int64]*model.Store, error) {
	result := make(map[int64]*model.Store, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	var stores []model.Store
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&stores).Error; err != nil {
		return nil, err
	}
	for i := range stores {
		result[stores[i].UserID] = &stores[i]
	}
	return result, nil
}

func (r *storeRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Store{}).Where("id = ?", id).Updates(fields).Error
}

// List 店铺列表，排除已删除用户的店铺
func (r *storeRepository) List(ctx context.Context, page, pageSize int) ([]model.Store, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("user_id IN (?)", r.db.Model(&model.User{}).Select("id").Where("deleted = ?", false))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(page, pageSize, 20)
	var stores []model.Store
	err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&stores).Error
	return stores, total, err
}
