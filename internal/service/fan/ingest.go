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
)

// InboundMessage 平台推送的消息
type InboundMessage struct {
	AccountID     string    `json:"account_id" binding:"required"`
	MessageID     string    `json:"message_id" binding:"required"`
	FanID         string    `json:"fan_id" binding:"required"`
	FanName       string    `json:"fan_name"`
	FanUsername   string    `json:"fan_username"`
	Sender        string    `json:"sender" binding:"required,oneof=fan model"`
	Text          string    `json:"text"`
	SentAt        time.Time `json:"sent_at"`
	IsPPV         bool      `json:"is_ppv"`
	Price         float64   `json:"price" binding:"gte=0"`
	Purchased     bool      `json:"purchased"`
	CatalogItemID string    `json:"catalog_item_id"`
}

// IngestResult 入库结果
type IngestResult struct {
	Duplicate bool               `json:"duplicate"`
	Fan       *model.Fan         `json:"fan,omitempty"`
	Message   *model.ChatMessage `json:"message,omitempty"`
	Purchase  *model.Purchase    `json:"purchase,omitempty"`
}

// errDuplicateMessage 平台消息已入库
var errDuplicateMessage = errors.New("platform message already stored")

// IngestMessage 入库一条平台消息
// 同一平台消息重复推送时直接返回 Duplicate
// 并发的重复推送由唯一索引拦截，失败的一方整体回滚
func (s *Service) IngestMessage(ctx context.Context, in *InboundMessage) (*IngestResult, error) {
	sender := model.Sender(in.Sender)
	if !sender.Valid() {
		return nil, errs.Validation("sender must be fan or model")
	}

	creator, err := s.repo.Creator.GetByPlatformAccountID(ctx, in.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("unknown platform account", err)
		}
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}

	// 内存集合只是快速路径，唯一索引才是最终判重依据
	key := creator.ID + ":" + in.MessageID
	if s.seen.Contains(key) {
		return &IngestResult{Duplicate: true}, nil
	}

	sentAt := in.SentAt
	if sentAt.IsZero() {
		sentAt = s.now()
	}

	platformID := in.MessageID
	result := &IngestResult{}
	err = s.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		f, err := upsertFan(ctx, repos, creator.ID, in)
		if err != nil {
			return err
		}

		msg := &model.ChatMessage{
			ID:                uuid.New().String(),
			CreatorID:         creator.ID,
			FanID:             f.ID,
			PlatformMessageID: &platformID,
			Sender:            sender,
			Text:              in.Text,
			SentAt:            sentAt,
			IsPPV:             in.IsPPV,
			PPVPrice:          in.Price,
			Purchased:         in.Purchased,
		}
		if in.CatalogItemID != "" {
			itemID := in.CatalogItemID
			msg.CatalogItemID = &itemID
		}
		if err := repos.Message.Create(ctx, msg); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateMessage
			}
			return fmt.Errorf("failed to create message: %w", err)
		}
		if err := repos.Fan.TouchMessage(ctx, f.ID, sentAt); err != nil {
			return fmt.Errorf("failed to update fan activity: %w", err)
		}

		if in.Purchased && in.CatalogItemID != "" {
			var price *float64
			if in.Price > 0 {
				price = &in.Price
			}
			p, err := recordPurchase(ctx, repos, creator.ID, f.ID, in.CatalogItemID, price, sentAt)
			if err != nil {
				return err
			}
			result.Purchase = p
		}

		result.Message = msg
		result.Fan, err = repos.Fan.GetByID(ctx, creator.ID, f.ID)
		return err
	})
	if errors.Is(err, errDuplicateMessage) {
		s.seen.Add(key)
		return &IngestResult{Duplicate: true}, nil
	}
	if err != nil {
		return nil, err
	}
	s.seen.Add(key)

	s.logger.Debug("Message ingested",
		zap.String("creator_id", creator.ID),
		zap.String("fan_id", result.Fan.ID),
		zap.String("platform_message_id", in.MessageID),
		zap.Bool("purchase", result.Purchase != nil))
	return result, nil
}

// upsertFan 按平台粉丝 ID 查找或创建粉丝，并同步显示名
func upsertFan(ctx context.Context, repos *repository.Repositories, creatorID string, in *InboundMessage) (*model.Fan, error) {
	f, err := repos.Fan.GetByPlatformID(ctx, creatorID, in.FanID)
	if err == nil {
		fields := map[string]interface{}{}
		if name := strings.TrimSpace(in.FanName); name != "" && name != f.Name {
			fields["name"] = name
		}
		if username := strings.TrimSpace(in.FanUsername); username != "" && username != f.Username {
			fields["username"] = username
		}
		if len(fields) > 0 {
			if err := repos.Fan.UpdateFields(ctx, creatorID, f.ID, fields); err != nil {
				return nil, fmt.Errorf("failed to update fan: %w", err)
			}
		}
		return f, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get fan: %w", err)
	}

	f = &model.Fan{
		ID:            uuid.New().String(),
		CreatorID:     creatorID,
		PlatformFanID: in.FanID,
		Name:          strings.TrimSpace(in.FanName),
		Username:      strings.TrimSpace(in.FanUsername),
		Tier:          model.TierFree,
	}
	if err := repos.Fan.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create fan: %w", err)
	}
	return f, nil
}
