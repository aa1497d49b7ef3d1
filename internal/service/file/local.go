package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage 本地文件存储，开发环境使用
type LocalStorage struct {
	basePath  string // 基础路径
	urlPrefix string // URL前缀，由 router 挂载静态目录
}

// NewLocalStorage 创建本地存储服务
func NewLocalStorage(basePath, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &LocalStorage{
		basePath:  basePath,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Save 保存媒体到本地
func (s *LocalStorage) Save(ctx context.Context, req *SaveRequest) (string, error) {
	key := objectKey(req)
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, req.Reader); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return key, nil
}

// Get 获取媒体内容
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete 删除媒体，不存在时忽略
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL 获取访问地址
func (s *LocalStorage) URL(ctx context.Context, key string) (string, error) {
	return fmt.Sprintf("%s/%s", s.urlPrefix, key), nil
}

// BasePath 本地根目录
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// URLPrefix 访问前缀
func (s *LocalStorage) URLPrefix() string {
	return s.urlPrefix
}

// resolve 拒绝跳出根目录的 key
func (s *LocalStorage) resolve(key string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.basePath, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid media key: %s", key)
	}
	return fullPath, nil
}
