package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"marketplace_api/internal/config"
	"marketplace_api/pkg/utils"
)

// 预签名操作
const (
	PresignPut = "put"
	PresignGet = "get"
)

// ==================== 接口定义 ====================

// StorageProvider 对象存储提供者接口，key 为桶内路径
type StorageProvider interface {
	// Put 写入对象
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Delete 删除对象
	Delete(ctx context.Context, key string) error

	// Presign 生成限时 URL，op 为 put 或 get
	Presign(ctx context.Context, key, op string, ttl time.Duration) (string, error)

	// PublicURL 对象的公开访问地址
	PublicURL(key string) string
}

// StoredObject 上传结果
type StoredObject struct {
	Key      string
	URL      string
	Size     int64
	MimeType string
}

// ==================== 工厂方法 ====================

// NewStorageProvider 按配置创建存储提供者
func NewStorageProvider(cfg config.StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== StorageService ====================

// StorageService 存储服务，负责生成 key 并委托给 Provider
type StorageService struct {
	provider StorageProvider
	config   config.StorageConfig
}

// NewStorageService 创建存储服务
func NewStorageService(cfg config.StorageConfig) (*StorageService, error) {
	provider, err := NewStorageProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewStorageServiceWithProvider(provider, cfg), nil
}

// NewStorageServiceWithProvider 使用已有 Provider 创建（测试注入）
func NewStorageServiceWithProvider(provider StorageProvider, cfg config.StorageConfig) *StorageService {
	return &StorageService{provider: provider, config: cfg}
}

// Upload 上传文件，key 为 folder/<毫秒时间戳>-<文件名>
func (s *StorageService) Upload(ctx context.Context, data []byte, contentType, folder, filename string) (*StoredObject, error) {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	key := utils.BuildObjectKey(folder, filename, time.Now())
	if err := s.provider.Put(ctx, key, data, contentType); err != nil {
		return nil, err
	}
	return &StoredObject{
		Key:      key,
		URL:      s.provider.PublicURL(key),
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

// Delete 删除文件
func (s *StorageService) Delete(ctx context.Context, key string) error {
	return s.provider.Delete(ctx, key)
}

// Presign 生成限时 URL，ttl <= 0 时使用配置默认值
func (s *StorageService) Presign(ctx context.Context, key, op string, ttl time.Duration) (string, error) {
	if op != PresignPut && op != PresignGet {
		return "", fmt.Errorf("不支持的预签名操作: %s", op)
	}
	if ttl <= 0 {
		ttl = s.config.PresignTTL
	}
	return s.provider.Presign(ctx, key, op, ttl)
}

// PublicURL 公开访问地址
func (s *StorageService) PublicURL(key string) string {
	return s.provider.PublicURL(key)
}

// MaxUploadSize 单文件大小上限
func (s *StorageService) MaxUploadSize() int64 {
	return s.config.MaxUploadSize
}

// MaxFiles 批量上传文件数上限
func (s *StorageService) MaxFiles() int {
	return s.config.MaxFiles
}

// ==================== S3 实现 ====================

// S3Storage AWS S3 及兼容协议的存储（endpoint 非空时使用 path style）
type S3Storage struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	region    string
	endpoint  string
	cdnDomain string
	basePath  string
}

func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage.bucket 未配置")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	// 未配置静态密钥时走默认凭证链 (环境变量 / IAM Role)
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		region:    region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		cdnDomain: cfg.CDNDomain,
		basePath:  strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *S3Storage) objectKey(key string) string {
	if s.basePath == "" {
		return key
	}
	return s.basePath + "/" + key
}

func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("上传S3失败: %v", err)
	}
	return nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	return err
}

func (s *S3Storage) Presign(ctx context.Context, key, op string, ttl time.Duration) (string, error) {
	objectKey := aws.String(s.objectKey(key))
	if op == PresignPut {
		req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    objectKey,
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return "", err
		}
		return req.URL, nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    objectKey,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *S3Storage) PublicURL(key string) string {
	objectKey := s.objectKey(key)
	switch {
	case s.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, objectKey)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, objectKey)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey)
	}
}

// ==================== 本地存储 (开发测试用) ====================

// LocalStorage 写入本地目录，URL 前缀取 endpoint
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(cfg config.StorageConfig) (*LocalStorage, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "./uploads"
	}
	baseURL := strings.TrimRight(cfg.Endpoint, "/")
	if baseURL == "" {
		baseURL = "http://localhost:3000/uploads"
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %v", err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// path key 不允许跳出根目录
func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("无效的文件路径: %s", key)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) Put(_ context.Context, key string, data []byte, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Presign 本地存储无需签名，仅附带操作和过期时间
func (s *LocalStorage) Presign(_ context.Context, key, op string, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("op", op)
	q.Set("expires", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
	return s.PublicURL(key) + "?" + q.Encode(), nil
}

func (s *LocalStorage) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
