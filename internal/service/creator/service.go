// Package creator 管理运营账号名下的创作者及其平台凭证
package creator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/service/credential"
	"github.com/ashwinyue/next-fans/internal/service/platform"
)

// Service 创作者服务
type Service struct {
	repo   *repository.Repositories
	cipher *credential.Cipher
	logger *zap.Logger
}

// NewService 创建创作者服务，cipher 为 nil 时不允许保存凭证
func NewService(repo *repository.Repositories, cipher *credential.Cipher, logger *zap.Logger) *Service {
	return &Service{repo: repo, cipher: cipher, logger: logger}
}

// CreateRequest 创建创作者请求
type CreateRequest struct {
	Name              string `json:"name" binding:"required,max=255"`
	PlatformAccountID string `json:"platform_account_id" binding:"max=64"`
	Persona           string `json:"persona"`
}

// CredentialRequest 保存平台凭证请求
type CredentialRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// Create 创建创作者
func (s *Service) Create(ctx context.Context, ownerID string, req *CreateRequest) (*model.Creator, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	c := &model.Creator{
		ID:                uuid.New().String(),
		OwnerID:           ownerID,
		Name:              name,
		PlatformAccountID: strings.TrimSpace(req.PlatformAccountID),
		Persona:           req.Persona,
	}
	if err := s.repo.Creator.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create creator: %w", err)
	}
	return c, nil
}

// List 列出运营账号名下的创作者
func (s *Service) List(ctx context.Context, ownerID string) ([]*model.Creator, error) {
	creators, err := s.repo.Creator.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}
	return creators, nil
}

// Get 获取创作者，不属于 ownerID 时视为不存在
func (s *Service) Get(ctx context.Context, ownerID, id string) (*model.Creator, error) {
	c, err := s.repo.Creator.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("creator not found", err)
		}
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if c.OwnerID != ownerID {
		return nil, errs.NotFound("creator not found", nil)
	}
	return c, nil
}

// SetCredential 加密保存平台凭证
func (s *Service) SetCredential(ctx context.Context, ownerID, id, plaintext string) error {
	if s.cipher == nil {
		return errs.Validation("credential encryption key is not configured")
	}
	plaintext = strings.TrimSpace(plaintext)
	if plaintext == "" {
		return errs.Validation("credential is required")
	}
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	sealed, err := s.cipher.Seal(id, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}
	if err := s.repo.Creator.UpdateCredential(ctx, id, sealed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("creator not found", err)
		}
		return fmt.Errorf("failed to save credential: %w", err)
	}
	s.logger.Info("Platform credential updated", zap.String("creator_id", id))
	return nil
}

// Account 解析调用平台 API 的账号
// 未保存凭证时 Token 为空，由客户端使用全局 API key
func (s *Service) Account(ctx context.Context, creatorID string) (platform.Account, error) {
	c, err := s.repo.Creator.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return platform.Account{}, errs.NotFound("creator not found", err)
		}
		return platform.Account{}, fmt.Errorf("failed to get creator: %w", err)
	}
	if c.PlatformAccountID == "" {
		return platform.Account{}, errs.Validation("creator has no platform account")
	}

	acct := platform.Account{ID: c.PlatformAccountID}
	if c.HasCredential() {
		if s.cipher == nil {
			return platform.Account{}, errs.Validation("credential encryption key is not configured")
		}
		token, err := s.cipher.Open(c.ID, c.EncryptedCredential)
		if err != nil {
			return platform.Account{}, fmt.Errorf("failed to decrypt credential: %w", err)
		}
		acct.Token = token
	}
	return acct, nil
}

// IDs 全部创作者 ID
func (s *Service) IDs(ctx context.Context) ([]string, error) {
	return s.repo.Creator.ListIDs(ctx)
}
