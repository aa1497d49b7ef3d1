package file

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage S3 兼容存储，默认按 Cloudflare R2 配置
type S3Storage struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	presignExpiry time.Duration
}

// S3Config S3 配置
type S3Config struct {
	AccountID     string // R2 账号，Endpoint 为空时用于拼接地址
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PresignExpiry time.Duration
}

// endpoint 返回自定义地址，未配置时使用 R2 地址
func (c *S3Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
	}
	return ""
}

// NewS3Storage 创建 S3 存储服务
func NewS3Storage(ctx context.Context, cfg *S3Config) (*S3Storage, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("missing required S3 config")
	}

	region := cfg.Region
	if region == "" {
		// R2 忽略 region，但 SDK 要求必填
		region = "auto"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	endpoint := cfg.endpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &S3Storage{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		presignExpiry: expiry,
	}, nil
}

// Save 上传媒体
func (s *S3Storage) Save(ctx context.Context, req *SaveRequest) (string, error) {
	key := objectKey(req)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        req.Reader,
		ContentType: aws.String(contentType),
	}
	if req.Size > 0 {
		input.ContentLength = aws.Int64(req.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload media to S3: %w", err)
	}
	return key, nil
}

// Get 获取媒体内容
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get media from S3: %w", err)
	}
	return out.Body, nil
}

// Delete 删除媒体
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete media from S3: %w", err)
	}
	return nil
}

// URL 生成预签名 GET 地址
func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	presigned, err := s.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		},
		func(po *s3.PresignOptions) {
			po.Expires = s.presignExpiry
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign media URL: %w", err)
	}
	return presigned.URL, nil
}
