package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ashwinyue/next-fans/internal/config"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/service/auth"
	"github.com/ashwinyue/next-fans/internal/service/callback"
	"github.com/ashwinyue/next-fans/internal/service/catalog"
	"github.com/ashwinyue/next-fans/internal/service/creator"
	"github.com/ashwinyue/next-fans/internal/service/credential"
	"github.com/ashwinyue/next-fans/internal/service/dedup"
	"github.com/ashwinyue/next-fans/internal/service/fan"
	"github.com/ashwinyue/next-fans/internal/service/file"
	"github.com/ashwinyue/next-fans/internal/service/platform"
	"github.com/ashwinyue/next-fans/internal/service/suggestion"
	"github.com/ashwinyue/next-fans/internal/service/usage"
)

// Services 服务集合
type Services struct {
	Auth       *auth.Service
	Creator    *creator.Service
	Fan        *fan.Service
	Sender     *fan.Sender
	Catalog    *catalog.Service
	Suggestion *suggestion.Service
	File       *file.Service

	Config *config.Config
}

// NewServices 创建所有服务
// redisClient 为 nil 时 AI 配额使用数据库计数
func NewServices(ctx context.Context, repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client, log *zap.Logger) (*Services, error) {
	authSvc, err := auth.NewService(repo, cfg.Security.JWTSecret)
	if err != nil {
		return nil, err
	}
	if cfg.Security.JWTSecret == "" {
		log.Warn("JWT secret not configured, using a random key; tokens will not survive restarts")
	}

	var cipher *credential.Cipher
	if cfg.Security.CredentialKey != "" {
		cipher, err = credential.NewCipher(cfg.Security.CredentialKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create credential cipher: %w", err)
		}
	} else {
		log.Warn("Credential key not configured, platform credentials cannot be stored")
	}

	fileSvc, err := file.NewServiceFromConfig(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create file service: %w", err)
	}

	var limiter usage.Limiter
	if redisClient != nil {
		limiter = usage.NewRedisLimiter(redisClient, cfg.AI.DailyLimit)
	} else {
		limiter = usage.NewDBLimiter(repo.Usage, cfg.AI.DailyLimit)
	}

	callback.SetupGlobalCallbacks(log.Named("llm"))
	chatModel, err := suggestion.NewChatModel(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	creatorSvc := creator.NewService(repo, cipher, log.Named("creator"))
	platformClient := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.APIKey,
		time.Duration(cfg.Platform.Timeout)*time.Second)

	log.Info("Services initialized",
		zap.String("storage", string(fileSvc.Type())),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("redis_usage", redisClient != nil))

	return &Services{
		Auth:       authSvc,
		Creator:    creatorSvc,
		Fan:        fan.NewService(repo, dedup.New(0), log.Named("fan")),
		Sender:     fan.NewSender(repo, creatorSvc, platformClient, fileSvc, log.Named("sender")),
		Catalog:    catalog.NewService(repo, fileSvc, log.Named("catalog")),
		Suggestion: suggestion.NewService(repo, limiter, chatModel, suggestion.DefaultPromptConfig(), log.Named("suggestion")),
		File:       fileSvc,
		Config:     cfg,
	}, nil
}
