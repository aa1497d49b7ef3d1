// Package fan 粉丝列表、聊天记录、消息入库与购买记录
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
	"github.com/ashwinyue/next-fans/internal/service/dedup"
	"github.com/ashwinyue/next-fans/internal/service/priority"
)

// 聊天记录分页
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// Service 粉丝服务
type Service struct {
	repo   *repository.Repositories
	seen   *dedup.Set
	logger *zap.Logger
	now    func() time.Time
}

// NewService 创建粉丝服务
func NewService(repo *repository.Repositories, seen *dedup.Set, logger *zap.Logger) *Service {
	if seen == nil {
		seen = dedup.New(0)
	}
	return &Service{repo: repo, seen: seen, logger: logger, now: time.Now}
}

// UpdateRequest 更新粉丝请求，nil 字段不修改
type UpdateRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=255"`
	Notes *string `json:"notes"`
	Tier  *string `json:"tier" binding:"omitempty,oneof=free vip whale"`
}

// PurchaseRequest 手动记录购买
type PurchaseRequest struct {
	CatalogItemID string   `json:"catalog_item_id" binding:"required"`
	Price         *float64 `json:"price" binding:"omitempty,gte=0"`
}

// ListRanked 按紧急程度排序的粉丝列表
func (s *Service) ListRanked(ctx context.Context, creatorID string) ([]priority.RankedFan, error) {
	fans, err := s.repo.Fan.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fans: %w", err)
	}
	latest, err := s.repo.Message.LatestPerFan(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest messages: %w", err)
	}
	return priority.RankFans(fans, latest, s.now()), nil
}

// Get 获取粉丝
func (s *Service) Get(ctx context.Context, creatorID, fanID string) (*model.Fan, error) {
	f, err := s.repo.Fan.GetByID(ctx, creatorID, fanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("fan not found", err)
		}
		return nil, fmt.Errorf("failed to get fan: %w", err)
	}
	return f, nil
}

// Update 修改粉丝名称、备注或手动调整等级
func (s *Service) Update(ctx context.Context, creatorID, fanID string, req *UpdateRequest) (*model.Fan, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Tier != nil {
		tier, err := model.ParseTier(*req.Tier)
		if err != nil {
			return nil, errs.Validation(err.Error())
		}
		fields["tier"] = tier
	}
	if len(fields) == 0 {
		return s.Get(ctx, creatorID, fanID)
	}

	if err := s.repo.Fan.UpdateFields(ctx, creatorID, fanID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("fan not found", err)
		}
		return nil, fmt.Errorf("failed to update fan: %w", err)
	}
	return s.Get(ctx, creatorID, fanID)
}

// History 聊天记录，按时间正序返回 before 之前的最近 limit 条
func (s *Service) History(ctx context.Context, creatorID, fanID string, before *time.Time, limit int) ([]*model.ChatMessage, error) {
	if _, err := s.Get(ctx, creatorID, fanID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	msgs, err := s.repo.Message.ListBefore(ctx, fanID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// RecordPurchase 记录购买并累加消费
func (s *Service) RecordPurchase(ctx context.Context, creatorID, fanID string, req *PurchaseRequest) (*model.Purchase, error) {
	var purchase *model.Purchase
	err := s.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := recordPurchase(ctx, repository.NewRepositories(tx), creatorID, fanID, req.CatalogItemID, req.Price, s.now())
		purchase = p
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Purchase recorded",
		zap.String("creator_id", creatorID),
		zap.String("fan_id", fanID),
		zap.String("item_id", purchase.CatalogItemID),
		zap.Float64("price", purchase.Price))
	return purchase, nil
}

// recordPurchase 在事务内追加购买记录、累加消费并提升等级
// price 为 nil 时按粉丝当前等级计价
func recordPurchase(ctx context.Context, repos *repository.Repositories, creatorID, fanID, itemID string, price *float64, at time.Time) (*model.Purchase, error) {
	f, err := repos.Fan.GetByID(ctx, creatorID, fanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("fan not found", err)
		}
		return nil, fmt.Errorf("failed to get fan: %w", err)
	}
	item, err := repos.Catalog.GetByID(ctx, creatorID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("catalog item not found", err)
		}
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}

	charged := catalog.PriceForTier(item.BasePrice, f.Tier)
	if price != nil {
		if *price < 0 {
			return nil, errs.Validation("price must not be negative")
		}
		charged = *price
	}

	p := &model.Purchase{
		ID:            uuid.New().String(),
		CreatorID:     creatorID,
		FanID:         fanID,
		CatalogItemID: item.ID,
		Price:         charged,
		PurchasedAt:   at,
	}
	if err := repos.Purchase.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}
	if err := repos.Fan.AddSpend(ctx, fanID, charged); err != nil {
		return nil, fmt.Errorf("failed to add spend: %w", err)
	}

	// 等级只升不降，手动设置的更高等级保留
	if tier := model.TierForSpend(f.SpentTotal + charged); tier > f.Tier {
		if err := repos.Fan.UpdateFields(ctx, creatorID, fanID, map[string]interface{}{"tier": tier}); err != nil {
			return nil, fmt.Errorf("failed to promote fan: %w", err)
		}
	}
	return p, nil
}

// RecalculateTiers 全量按消费提升等级
func (s *Service) RecalculateTiers(ctx context.Context) (int64, error) {
	changed, err := s.repo.Fan.PromoteTiers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to recalculate tiers: %w", err)
	}
	return changed, nil
}
