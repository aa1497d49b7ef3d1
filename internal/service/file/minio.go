package file

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage MinIO 对象存储
type MinIOStorage struct {
	client     *minio.Client
	bucketName string
	urlPrefix  string
}

// MinIOConfig MinIO 配置
type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	URLPrefix  string
}

// NewMinIOStorage 创建 MinIO 存储服务，bucket 不存在时自动创建
func NewMinIOStorage(ctx context.Context, cfg *MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	urlPrefix := cfg.URLPrefix
	if urlPrefix == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		urlPrefix = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinIOStorage{
		client:     client,
		bucketName: cfg.BucketName,
		urlPrefix:  strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Save 上传媒体
func (s *MinIOStorage) Save(ctx context.Context, req *SaveRequest) (string, error) {
	key := objectKey(req)
	size := req.Size
	if size <= 0 {
		size = -1
	}

	_, err := s.client.PutObject(ctx, s.bucketName, key, req.Reader, size, minio.PutObjectOptions{
		ContentType: req.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media to MinIO: %w", err)
	}
	return key, nil
}

// Get 获取媒体内容
func (s *MinIOStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get media from MinIO: %w", err)
	}
	return object, nil
}

// Delete 删除媒体
func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}

// URL 获取访问地址
func (s *MinIOStorage) URL(ctx context.Context, key string) (string, error) {
	return fmt.Sprintf("%s/%s/%s", s.urlPrefix, s.bucketName, key), nil
}
