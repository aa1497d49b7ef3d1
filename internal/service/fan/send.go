package fan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/service/catalog"
	"github.com/ashwinyue/next-fans/internal/service/platform"
)

// AccountResolver 解析创作者的平台账号
type AccountResolver interface {
	Account(ctx context.Context, creatorID string) (platform.Account, error)
}

// Messenger 平台消息发送
type Messenger interface {
	SendMessage(ctx context.Context, acct platform.Account, fanPlatformID string, msg *platform.OutboundMessage) (*platform.SentMessage, error)
	SetTyping(ctx context.Context, acct platform.Account, fanPlatformID string) error
}

// MediaResolver 把存储 key 解析为可发送的 URL
type MediaResolver interface {
	URLs(ctx context.Context, keys []string) ([]string, error)
}

// SendRequest 发送消息请求
type SendRequest struct {
	Text          string `json:"text" binding:"required"`
	CatalogItemID string `json:"catalog_item_id"`
}

// Sender 通过平台给粉丝发消息并记录
type Sender struct {
	repo      *repository.Repositories
	accounts  AccountResolver
	messenger Messenger
	media     MediaResolver
	logger    *zap.Logger
	now       func() time.Time
}

// NewSender 创建发送服务
func NewSender(repo *repository.Repositories, accounts AccountResolver, messenger Messenger, media MediaResolver, logger *zap.Logger) *Sender {
	return &Sender{
		repo:      repo,
		accounts:  accounts,
		messenger: messenger,
		media:     media,
		logger:    logger,
		now:       time.Now,
	}
}

// Send 发送消息，带内容时按粉丝等级定价作为 PPV 发送
func (s *Sender) Send(ctx context.Context, creatorID, fanID string, req *SendRequest) (*model.ChatMessage, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, errs.Validation("text is required")
	}

	f, err := s.repo.Fan.GetByID(ctx, creatorID, fanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("fan not found", err)
		}
		return nil, fmt.Errorf("failed to get fan: %w", err)
	}

	acct, err := s.accounts.Account(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	out := &platform.OutboundMessage{Text: text}
	var itemID *string
	if req.CatalogItemID != "" {
		item, err := s.repo.Catalog.GetByID(ctx, creatorID, req.CatalogItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errs.NotFound("catalog item not found", err)
			}
			return nil, fmt.Errorf("failed to get catalog item: %w", err)
		}
		out.Price = catalog.PriceForTier(item.BasePrice, f.Tier)
		out.MediaURLs = []string(item.MediaURLs)
		if len(item.MediaKeys) > 0 && s.media != nil {
			urls, err := s.media.URLs(ctx, item.MediaKeys)
			if err != nil {
				return nil, errs.Upstream("failed to resolve media", err)
			}
			out.MediaURLs = urls
		}
		itemID = &item.ID
	}

	if err := s.messenger.SetTyping(ctx, acct, f.PlatformFanID); err != nil {
		s.logger.Warn("Failed to set typing indicator",
			zap.String("creator_id", creatorID),
			zap.String("fan_id", fanID),
			zap.Error(err))
	}

	sent, err := s.messenger.SendMessage(ctx, acct, f.PlatformFanID, out)
	if err != nil {
		return nil, err
	}

	sentAt := sent.CreatedAt
	if sentAt.IsZero() {
		sentAt = s.now()
	}
	msg := &model.ChatMessage{
		ID:                uuid.New().String(),
		CreatorID:         creatorID,
		FanID:             fanID,
		PlatformMessageID: platformMessageID(sent.ID),
		Sender:            model.SenderModel,
		Text:              text,
		SentAt:            sentAt,
		IsPPV:             out.Price > 0,
		PPVPrice:          out.Price,
		CatalogItemID:     itemID,
	}
	// 平台已发出，入库失败只能记录
	if err := s.repo.Message.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to store sent message",
			zap.String("creator_id", creatorID),
			zap.String("platform_message_id", sent.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	if err := s.repo.Fan.TouchMessage(ctx, fanID, sentAt); err != nil {
		return nil, fmt.Errorf("failed to update fan activity: %w", err)
	}
	return msg, nil
}

// platformMessageID 空 ID 存为 NULL，避免触发唯一索引
func platformMessageID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
