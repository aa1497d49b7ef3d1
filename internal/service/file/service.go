package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ashwinyue/next-fans/internal/config"
	"github.com/ashwinyue/next-fans/internal/errs"
)

// Service 媒体服务
type Service struct {
	storage     Storage
	storageType StorageType
}

// NewService 创建媒体服务
func NewService(storage Storage, storageType StorageType) *Service {
	return &Service{
		storage:     storage,
		storageType: storageType,
	}
}

// NewServiceFromConfig 从配置创建媒体服务
func NewServiceFromConfig(ctx context.Context, cfg *config.StorageConfig) (*Service, error) {
	var storage Storage
	var err error

	storageType := StorageType(cfg.Type)
	switch storageType {
	case StorageTypeLocal:
		storage, err = NewLocalStorage(cfg.Local.BasePath, cfg.Local.URLPrefix)

	case StorageTypeMinIO:
		if cfg.MinIO.Endpoint == "" || cfg.MinIO.AccessKey == "" || cfg.MinIO.SecretKey == "" || cfg.MinIO.Bucket == "" {
			return nil, fmt.Errorf("missing required MinIO config")
		}
		storage, err = NewMinIOStorage(ctx, &MinIOConfig{
			Endpoint:   cfg.MinIO.Endpoint,
			AccessKey:  cfg.MinIO.AccessKey,
			SecretKey:  cfg.MinIO.SecretKey,
			BucketName: cfg.MinIO.Bucket,
			UseSSL:     cfg.MinIO.UseSSL,
			URLPrefix:  cfg.MinIO.URLPrefix,
		})

	case StorageTypeS3:
		storage, err = NewS3Storage(ctx, &S3Config{
			AccountID:     cfg.S3.AccountID,
			Endpoint:      cfg.S3.Endpoint,
			Region:        cfg.S3.Region,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			PresignExpiry: time.Duration(cfg.S3.PresignExpiry) * time.Second,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	return NewService(storage, storageType), nil
}

// Type 存储类型
func (s *Service) Type() StorageType {
	return s.storageType
}

// Storage 底层存储
func (s *Service) Storage() Storage {
	return s.storage
}

// Put 保存媒体，返回 key 和访问地址
func (s *Service) Put(ctx context.Context, creatorID, fileName, contentType string, size int64, r io.Reader) (string, string, error) {
	key, err := s.storage.Save(ctx, &SaveRequest{
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		Reader:      r,
		CreatorID:   creatorID,
	})
	if err != nil {
		return "", "", err
	}

	url, err := s.storage.URL(ctx, key)
	if err != nil {
		// 保存成功但拿不到地址时回滚
		_ = s.storage.Delete(ctx, key)
		return "", "", err
	}
	return key, url, nil
}

// Remove 删除媒体
func (s *Service) Remove(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// URLs 按 key 生成当前可用的访问地址
// 预签名地址会过期，发送前需要重新生成
func (s *Service) URLs(ctx context.Context, keys []string) ([]string, error) {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		url, err := s.storage.URL(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve media %s: %w", key, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Open 读取媒体内容
func (s *Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.NotFound("media not found", err)
		}
		return nil, err
	}
	return r, nil
}
