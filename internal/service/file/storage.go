// Package file 保存创作者上传的媒体
package file

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage 媒体存储接口
type Storage interface {
	// Save 保存媒体，返回对象 key
	Save(ctx context.Context, req *SaveRequest) (string, error)
	// Get 获取媒体内容
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 删除媒体
	Delete(ctx context.Context, key string) error
	// URL 获取访问地址，S3 返回预签名地址
	URL(ctx context.Context, key string) (string, error)
}

// SaveRequest 保存媒体请求
type SaveRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
	CreatorID   string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeMinIO StorageType = "minio"
	StorageTypeS3    StorageType = "s3"
)

// objectKey 生成对象 key: {creatorID}/{uuid}.{ext}
func objectKey(req *SaveRequest) string {
	ext := strings.ToLower(filepath.Ext(req.FileName))
	if ext == "" {
		ext = extensionByContentType(req.ContentType)
	}
	return fmt.Sprintf("%s/%s%s", req.CreatorID, uuid.New().String(), ext)
}

// extensionByContentType 根据内容类型返回扩展名
func extensionByContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "audio/mpeg":
		return ".mp3"
	default:
		return ".bin"
	}
}
