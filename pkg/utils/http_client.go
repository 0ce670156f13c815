package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient 创建统一配置超时和 UA 的 Resty 客户端
func NewHTTPClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(1).
		SetHeader("User-Agent", "Marketplace-API/1.0")
}

// DownloadImage 下载网络图片，返回内容和 Content-Type
// maxSize > 0 时最多读取 maxSize+1 字节，超出即中断连接并报错
func DownloadImage(ctx context.Context, client *resty.Client, url string, maxSize int64) ([]byte, string, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("http get failed: %w", err)
	}
	body := resp.RawBody()
	if body == nil {
		return nil, "", fmt.Errorf("empty response body")
	}
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status: %d", resp.StatusCode())
	}

	var reader io.Reader = body
	if maxSize > 0 {
		if length := resp.RawResponse.ContentLength; length > maxSize {
			return nil, "", fmt.Errorf("file too large: %d bytes", length)
		}
		reader = io.LimitReader(body, maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("read body failed: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, "", fmt.Errorf("file too large: more than %d bytes", maxSize)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
