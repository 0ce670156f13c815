package utils

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"my photo (1).jpg", "my_photo__1_.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\\Users\\ana\\pic.png`, "pic.png"},
		{"", "file"},
		{"/", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFolder(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"空值取默认", "", "products"},
		{"去掉首尾斜杠", "/stores/avatars/", "stores/avatars"},
		{"过滤上级目录", "../../secret", "secret"},
		{"只有上级目录", "../..", "products"},
		{"替换非法字符", "my folder", "my_folder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFolder(tt.in, "products"))
		})
	}
}

func TestBuildObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "products/1700000000123-my_mug.png", BuildObjectKey("products", "my mug.png", now))
}

func TestContentTypes(t *testing.T) {
	assert.True(t, IsImageContentType("image/png"))
	assert.True(t, IsImageContentType(" IMAGE/JPEG "))
	assert.False(t, IsImageContentType("text/plain"))

	assert.True(t, IsAllowedPresignType("image/webp"))
	assert.True(t, IsAllowedPresignType("IMAGE/PNG"))
	assert.False(t, IsAllowedPresignType("image/svg+xml"))
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "kiln.png", FilenameFromURL("https://cdn.example.com/a/kiln.png?w=200#top"))
	assert.Equal(t, "image", FilenameFromURL(""))
}

// ==================== TTLCache ====================

func TestTTLCache(t *testing.T) {
	cache := NewTTLCache()
	cache.Set("live", "v", time.Now().Add(time.Hour))
	cache.Set("dead", "v", time.Now().Add(-time.Second))
	cache.Set("dead2", "v", time.Now().Add(-time.Second))

	val, ok := cache.Get("live")
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	// 懒删除
	assert.False(t, cache.Has("dead"))
	assert.Equal(t, 1, cache.Purge(), "dead 已在 Has 中删除")

	cache.Delete("live")
	assert.False(t, cache.Has("live"))
}

// ==================== 下载 ====================

func TestDownloadImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000000000000000")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/typed.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case "/raw":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(png)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)
	ctx := context.Background()

	data, contentType, err := DownloadImage(ctx, client, srv.URL+"/typed.jpg", 0)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, contentType, err = DownloadImage(ctx, client, srv.URL+"/raw", 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType, "二进制流按内容识别")

	_, _, err = DownloadImage(ctx, client, srv.URL+"/raw", 4)
	assert.ErrorContains(t, err, "too large")

	_, _, err = DownloadImage(ctx, client, srv.URL+"/missing", 0)
	assert.ErrorContains(t, err, "404")
}

func TestDownloadImage_StopsAtLimit(t *testing.T) {
	const total = 64 << 20
	chunk := bytes.Repeat([]byte{0xff}, 32<<10)

	var written atomic.Int64
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(done)
		// 不声明 Content-Length，只能靠读取上限截断
		w.Header().Set("Content-Type", "image/png")
		for written.Load() < total {
			n, err := w.Write(chunk)
			written.Add(int64(n))
			if err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(10 * time.Second).SetRetryCount(0)
	_, _, err := DownloadImage(context.Background(), client, srv.URL, 1<<20)
	require.Error(t, err)
	assert.ErrorContains(t, err, "too large")

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("server still writing after client gave up")
	}
	assert.Less(t, written.Load(), int64(32<<20), "超限后应停止读取")
}

func TestDownloadImage_RejectsDeclaredLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(8<<20))
		_, _ = w.Write(make([]byte, 8<<20))
	}))
	defer srv.Close()

	_, _, err := DownloadImage(context.Background(), NewHTTPClient(5*time.Second), srv.URL, 1<<20)
	assert.ErrorContains(t, err, "too large")
}
