package utils

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// allowedPresignTypes 直传允许的图片类型
var allowedPresignTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// SanitizeFilename 非字母数字 . - 的字符替换为 _
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// SanitizeFolder 目录名只保留安全字符，去掉首尾 /
func SanitizeFolder(folder, fallback string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return fallback
	}
	parts := strings.Split(folder, "/")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		cleaned = append(cleaned, unsafeFilenameChars.ReplaceAllString(p, "_"))
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return strings.Join(cleaned, "/")
}

// BuildObjectKey folder/<unix 毫秒>-<文件名>
func BuildObjectKey(folder, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s", folder, now.UnixMilli(), SanitizeFilename(filename))
}

// IsImageContentType 是否为 image/* 类型
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// IsAllowedPresignType 直传类型白名单
func IsAllowedPresignType(contentType string) bool {
	return allowedPresignTypes[strings.ToLower(contentType)]
}

// FilenameFromURL 从远程地址中取文件名
func FilenameFromURL(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	name := path.Base(rawURL)
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return name
}
