package dto

import "time"

// UploadResult 上传结果
type UploadResult struct {
	ID       int64  `json:"id"`
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimetype"`
}

// MultiUploadResult 批量上传结果
type MultiUploadResult struct {
	Images []UploadResult `json:"images"`
	Failed []string       `json:"failed"` // 失败的文件名
}

// ImportImageRequest 从远程地址导入图片
type ImportImageRequest struct {
	URL    string `json:"url" binding:"required,url,max=2048"`
	Folder string `json:"folder" binding:"omitempty,max=100"`
}

// PresignRequest 申请直传 URL
type PresignRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"omitempty,oneof=image/jpeg image/jpg image/png image/gif image/webp"`
	Folder      string `json:"folder" binding:"omitempty,max=100"`
	ExpiresIn   int    `json:"expires_in" binding:"omitempty,min=60,max=604800"`
}

// PresignResponse 直传 URL
type PresignResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
	ExpiresIn int    `json:"expires_in"`
}

// ImageInfo 图片元数据
type ImageInfo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimetype"`
	Folder    string    `json:"folder"`
	CreatedAt time.Time `json:"created_at"`
}
