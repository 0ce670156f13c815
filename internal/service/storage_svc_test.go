package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_api/internal/config"
)

func newLocalStorage(t *testing.T) (*StorageService, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewStorageService(config.StorageConfig{
		Provider:   "local",
		BasePath:   dir,
		Endpoint:   "http://localhost:3000/uploads/",
		PresignTTL: time.Hour,
	})
	require.NoError(t, err)
	return svc, dir
}

func TestNewStorageService_InvalidProvider(t *testing.T) {
	_, err := NewStorageService(config.StorageConfig{Provider: "invalid"})
	assert.Error(t, err)

	_, err = NewStorageService(config.StorageConfig{Provider: "s3"})
	assert.Error(t, err, "缺少 bucket")
}

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	svc, dir := newLocalStorage(t)
	ctx := context.Background()

	obj, err := svc.Upload(ctx, []byte("hello"), "", "products", "My Photo.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.Key, "products/"), obj.Key)
	assert.Equal(t, int64(5), obj.Size)
	assert.Equal(t, "text/plain; charset=utf-8", obj.MimeType, "未指定类型时按内容识别")
	assert.Equal(t, "http://localhost:3000/uploads/"+obj.Key, obj.URL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(obj.Key)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, svc.Delete(ctx, obj.Key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(obj.Key)))
	assert.True(t, os.IsNotExist(err))

	// 重复删除不报错
	assert.NoError(t, svc.Delete(ctx, obj.Key))
}

func TestLocalStorage_PathTraversal(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalStorage(config.StorageConfig{BasePath: dir})
	require.NoError(t, err)

	require.NoError(t, local.Put(context.Background(), "../../escape.txt", []byte("x"), "text/plain"))
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err, "路径被限制在根目录内")

	assert.Error(t, local.Put(context.Background(), "/", []byte("x"), "text/plain"))
}

func TestStorageService_Presign(t *testing.T) {
	svc, _ := newLocalStorage(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		op      string
		wantErr bool
	}{
		{"上传", PresignPut, false},
		{"下载", PresignGet, false},
		{"不支持的操作", "delete", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Presign(ctx, "products/1-a.png", tt.op, 0)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, u, "products/1-a.png?")
			assert.Contains(t, u, "op="+tt.op)
			assert.Contains(t, u, "expires=")
		})
	}
}

func TestS3Storage_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{
			"CDN 域名",
			config.StorageConfig{Bucket: "bkt", CDNDomain: "cdn.example.com", BasePath: "/img/"},
			"https://cdn.example.com/img/products/a.png",
		},
		{
			"自定义 endpoint",
			config.StorageConfig{Bucket: "bkt", Endpoint: "http://minio:9000/"},
			"http://minio:9000/bkt/products/a.png",
		},
		{
			"默认 AWS 域名",
			config.StorageConfig{Bucket: "bkt", Region: "sa-east-1"},
			"https://bkt.s3.sa-east-1.amazonaws.com/products/a.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.AccessKey, cfg.SecretKey = "AKIDEXAMPLE", "secret"
			s, err := NewS3Storage(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.PublicURL("products/a.png"))
		})
	}
}

func TestS3Storage_Upload(t *testing.T) {
	bucket := os.Getenv("AWS_BUCKET")
	if bucket == "" {
		t.Skip("跳过: 需要设置 AWS_BUCKET 环境变量")
	}

	svc, err := NewStorageService(config.StorageConfig{
		Provider:   "s3",
		Bucket:     bucket,
		Region:     os.Getenv("AWS_REGION"),
		AccessKey:  os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		PresignTTL: time.Minute,
	})
	require.NoError(t, err)

	ctx := context.Background()
	obj, err := svc.Upload(ctx, []byte("integration"), "text/plain", "tests", "ping.txt")
	require.NoError(t, err)
	t.Logf("uploaded %s", obj.URL)

	u, err := svc.Presign(ctx, obj.Key, PresignGet, 0)
	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Signature")

	require.NoError(t, svc.Delete(ctx, obj.Key))
}
