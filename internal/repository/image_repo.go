package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace_api/internal/model"
)

// ImageRepository 图片元数据仓储
type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	GetByID(ctx context.Context, id int64) (*model.Image, error)
	Delete(ctx context.Context, id int64) error
	ListByFolder(ctx context.Context, folder string, page, pageSize int) ([]model.Image, int64, error)
}

type imageRepo struct {
	db *gorm.DB
}

// NewImageRepository 创建图片仓储
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepo{db: db}
}

func (r *imageRepo) Create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepo) GetByID(ctx context.Context, id int64) (*model.Image, error) {
	var image model.Image
	err := r.db.WithContext(ctx).First(&image, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &image, err
}

func (r *imageRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Image{}, id).Error
}

func (r *imageRepo) ListByFolder(ctx context.Context, folder string, page, pageSize int) ([]model.Image, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Image{}).Where("folder = ?", folder)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(page, pageSize, 20)
	var images []model.Image
	err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&images).Error
	return images, total, err
}
