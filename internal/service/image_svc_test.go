package service

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_api/internal/api/dto"
	"marketplace_api/internal/model"
	"marketplace_api/pkg/utils"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImageService_Upload(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@example.com", true)

	tests := []struct {
		name    string
		file    ImageFile
		wantErr error
	}{
		{"空文件", ImageFile{Filename: "a.png"}, ErrEmptyFile},
		{"超过大小限制", ImageFile{Filename: "big.png", ContentType: "image/png", Data: bytes.Repeat([]byte{1}, 2<<20)}, ErrImageTooLarge},
		{"非图片", ImageFile{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")}, ErrNotImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.imageSvc.Upload(env.ctx, user.ID, tt.file, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, int64(0), env.count(t, &model.Image{}))

	t.Run("按内容识别类型", func(t *testing.T) {
		result, err := env.imageSvc.Upload(env.ctx, user.ID, ImageFile{
			Filename:    "photo.png",
			ContentType: "application/octet-stream",
			Data:        pngHeader,
		}, "")
		require.NoError(t, err)
		assert.Equal(t, "image/png", result.MimeType)
		assert.True(t, strings.HasPrefix(result.Key, "products/"), "默认目录为 products")
		assert.Equal(t, int64(len(pngHeader)), result.Size)

		info, err := env.imageSvc.Get(env.ctx, result.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, info.UserID)
		assert.Equal(t, "products", info.Folder)
	})
}

func TestImageService_UploadMultiple(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@example.com", true)

	files := []ImageFile{
		{Filename: "one.png", Data: pngHeader},
		{Filename: "bad.txt", ContentType: "text/plain", Data: []byte("nope")},
		{Filename: "two.png", Data: pngHeader},
	}
	result, err := env.imageSvc.UploadMultiple(env.ctx, user.ID, files, "stores/avatars")
	require.NoError(t, err)
	assert.Len(t, result.Images, 2)
	assert.Equal(t, []string{"bad.txt"}, result.Failed)

	list, err := env.imageSvc.ListByFolder(env.ctx, "stores/avatars", dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Total)

	_, err = env.imageSvc.UploadMultiple(env.ctx, user.ID, append(files, files[0]), "")
	assert.ErrorIs(t, err, ErrTooManyFiles)

	_, err = env.imageSvc.UploadMultiple(env.ctx, user.ID, nil, "")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestImageService_Presign(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.imageSvc.Presign(env.ctx, &dto.PresignRequest{Filename: "cover.jpg", Folder: "banners"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "banners/"))
	assert.Contains(t, resp.UploadURL, "?op=put&expires=")
	assert.Equal(t, "http://localhost:3000/uploads/"+resp.Key, resp.PublicURL)
	assert.Equal(t, 3600, resp.ExpiresIn)

	_, err = env.imageSvc.Presign(env.ctx, &dto.PresignRequest{Filename: "script.svg"})
	assert.ErrorIs(t, err, ErrUnsupportedImageType)
}

func TestImageService_Delete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", true)
	other := env.createUser(t, "other@example.com", true)

	uploaded, err := env.imageSvc.Upload(env.ctx, owner.ID, ImageFile{Filename: "x.png", Data: pngHeader}, "")
	require.NoError(t, err)

	assert.ErrorIs(t, env.imageSvc.Delete(env.ctx, other.ID, uploaded.ID), ErrImageForbidden)
	require.NoError(t, env.imageSvc.Delete(env.ctx, owner.ID, uploaded.ID))
	assert.ErrorIs(t, env.imageSvc.Delete(env.ctx, owner.ID, uploaded.ID), ErrImageNotFound)

	_, err = env.imageSvc.Get(env.ctx, uploaded.ID)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestImageService_Import(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@example.com", true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	defer server.Close()

	svc := NewImageService(env.images, env.storageSvc, utils.NewHTTPClient(5*time.Second))

	result, err := svc.Import(env.ctx, user.ID, &dto.ImportImageRequest{URL: server.URL + "/remote/kiln.png?size=large"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Key, "-kiln.png"), result.Key)
	assert.Equal(t, "image/png", result.MimeType)

	_, err = svc.Import(env.ctx, user.ID, &dto.ImportImageRequest{URL: server.URL + "/missing.png"})
	assert.ErrorIs(t, err, ErrImportFailed)
}
