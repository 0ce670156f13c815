package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
	"marketplace_api/internal/repository"
	"marketplace_api/pkg/utils"
)

const (
	defaultUploadFolder  = "products"
	defaultPresignFolder = "images"
	defaultPresignTTL    = 3600
)

// ImageFile 待上传的文件
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageService 图片上传与元数据管理
type ImageService struct {
	imageRepo repository.ImageRepository
	storage   *StorageService
	client    *resty.Client
}

// NewImageService client 用于远程导入
func NewImageService(imageRepo repository.ImageRepository, storage *StorageService, client *resty.Client) *ImageService {
	return &ImageService{
		imageRepo: imageRepo,
		storage:   storage,
		client:    client,
	}
}

// ==================== 上传 ====================

// Upload 上传单张图片并记录元数据
func (s *ImageService) Upload(ctx context.Context, userID int64, file ImageFile, folder string) (*dto.UploadResult, error) {
	if len(file.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if limit := s.storage.MaxUploadSize(); limit > 0 && int64(len(file.Data)) > limit {
		return nil, fmt.Errorf("%w: 最大 %dMB", ErrImageTooLarge, limit>>20)
	}

	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(file.Data)
	}
	if !utils.IsImageContentType(contentType) {
		return nil, ErrNotImage
	}

	folder = utils.SanitizeFolder(folder, defaultUploadFolder)
	obj, err := s.storage.Upload(ctx, file.Data, contentType, folder, file.Filename)
	if err != nil {
		zap.L().Error("upload image failed", zap.String("folder", folder), zap.Error(err))
		return nil, ErrUploadFailed
	}

	image := &model.Image{
		UserID:   userID,
		Key:      obj.Key,
		URL:      obj.URL,
		Size:     obj.Size,
		MimeType: obj.MimeType,
		Folder:   folder,
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		// 元数据写入失败时回收已上传的对象
		if delErr := s.storage.Delete(ctx, obj.Key); delErr != nil {
			zap.L().Warn("cleanup uploaded object failed", zap.String("key", obj.Key), zap.Error(delErr))
		}
		return nil, err
	}
	return toUploadResult(image), nil
}

// Limits 单文件大小和批量文件数上限，0 表示不限制
func (s *ImageService) Limits() (maxSize int64, maxFiles int) {
	return s.storage.MaxUploadSize(), s.storage.MaxFiles()
}

// UploadMultiple 批量上传，单个文件失败不影响其它文件
func (s *ImageService) UploadMultiple(ctx context.Context, userID int64, files []ImageFile, folder string) (*dto.MultiUploadResult, error) {
	if len(files) == 0 {
		return nil, ErrEmptyFile
	}
	if limit := s.storage.MaxFiles(); limit > 0 && len(files) > limit {
		return nil, fmt.Errorf("%w: 最多 %d 个", ErrTooManyFiles, limit)
	}

	result := &dto.MultiUploadResult{
		Images: make([]dto.UploadResult, 0, len(files)),
		Failed: make([]string, 0),
	}
	for _, file := range files {
		uploaded, err := s.Upload(ctx, userID, file, folder)
		if err != nil {
			zap.L().Warn("skip image in batch upload",
				zap.String("filename", file.Filename),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, file.Filename)
			continue
		}
		result.Images = append(result.Images, *uploaded)
	}
	return result, nil
}

// Import 下载远程图片后上传
func (s *ImageService) Import(ctx context.Context, userID int64, req *dto.ImportImageRequest) (*dto.UploadResult, error) {
	data, contentType, err := utils.DownloadImage(ctx, s.client, req.URL, s.storage.MaxUploadSize())
	if err != nil {
		zap.L().Warn("import image failed", zap.String("url", req.URL), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}
	return s.Upload(ctx, userID, ImageFile{
		Filename:    utils.FilenameFromURL(req.URL),
		ContentType: contentType,
		Data:        data,
	}, req.Folder)
}

// ==================== 直传 ====================

// Presign 生成客户端直传用的 PUT URL
func (s *ImageService) Presign(ctx context.Context, req *dto.PresignRequest) (*dto.PresignResponse, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(path.Ext(req.Filename)))
	}
	if !utils.IsAllowedPresignType(contentType) {
		return nil, ErrUnsupportedImageType
	}

	expiresIn := req.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultPresignTTL
	}
	folder := utils.SanitizeFolder(req.Folder, defaultPresignFolder)
	key := utils.BuildObjectKey(folder, req.Filename, time.Now())

	uploadURL, err := s.storage.Presign(ctx, key, PresignPut, time.Duration(expiresIn)*time.Second)
	if err != nil {
		zap.L().Error("presign failed", zap.String("key", key), zap.Error(err))
		return nil, ErrUploadFailed
	}
	return &dto.PresignResponse{
		UploadURL: uploadURL,
		Key:       key,
		PublicURL: s.storage.PublicURL(key),
		ExpiresIn: expiresIn,
	}, nil
}

// ==================== 查询与删除 ====================

// Get 图片元数据
func (s *ImageService) Get(ctx context.Context, id int64) (*dto.ImageInfo, error) {
	image, err := s.imageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, ErrImageNotFound
	}
	return toImageInfo(image), nil
}

// Delete 仅上传者本人；对象存储删除失败只记日志，元数据照常删除
func (s *ImageService) Delete(ctx context.Context, userID, id int64) error {
	image, err := s.imageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if image == nil {
		return ErrImageNotFound
	}
	if image.UserID != userID {
		return ErrImageForbidden
	}

	if err := s.storage.Delete(ctx, image.Key); err != nil {
		zap.L().Warn("delete object failed", zap.String("key", image.Key), zap.Error(err))
	}
	return s.imageRepo.Delete(ctx, id)
}

// ListByFolder 目录下的图片
func (s *ImageService) ListByFolder(ctx context.Context, folder string, q dto.PageQuery) (*dto.PageResult[dto.ImageInfo], error) {
	q.Normalize(20, 100)
	images, total, err := s.imageRepo.ListByFolder(ctx, utils.SanitizeFolder(folder, defaultUploadFolder), q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ImageInfo, len(images))
	for i := range images {
		items[i] = *toImageInfo(&images[i])
	}
	return dto.NewPageResult(items, q, total), nil
}

func toUploadResult(image *model.Image) *dto.UploadResult {
	return &dto.UploadResult{
		ID:       image.ID,
		Key:      image.Key,
		URL:      image.URL,
		Size:     image.Size,
		MimeType: image.MimeType,
	}
}

func toImageInfo(image *model.Image) *dto.ImageInfo {
	return &dto.ImageInfo{
		ID:        image.ID,
		UserID:    image.UserID,
		Key:       image.Key,
		URL:       image.URL,
		Size:      image.Size,
		MimeType:  image.MimeType,
		Folder:    image.Folder,
		CreatedAt: image.CreatedAt,
	}
}

// ==================== 错误定义 ====================

var (
	ErrImageNotFound        = errors.New("图片不存在")
	ErrImageForbidden       = errors.New("无权删除该图片")
	ErrEmptyFile            = errors.New("未上传文件")
	ErrImageTooLarge        = errors.New("文件过大")
	ErrNotImage             = errors.New("只允许上传图片")
	ErrTooManyFiles         = errors.New("文件数量超出限制")
	ErrUnsupportedImageType = errors.New("不支持的图片类型")
	ErrUploadFailed         = errors.New("上传失败")
	ErrImportFailed         = errors.New("导入图片失败")
)
