package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/repository"
)

// MediaStore 媒体存储
type MediaStore interface {
	// Put 保存媒体，返回存储 key 和访问 URL
	Put(ctx context.Context, creatorID, fileName, contentType string, size int64, r io.Reader) (key, url string, err error)
	// Remove 删除媒体
	Remove(ctx context.Context, key string) error
}

// Service 内容目录服务
type Service struct {
	repo   *repository.Repositories
	media  MediaStore
	logger *zap.Logger
}

// NewService 创建目录服务
func NewService(repo *repository.Repositories, media MediaStore, logger *zap.Logger) *Service {
	return &Service{repo: repo, media: media, logger: logger}
}

// View 目录全貌
type View struct {
	Sessions []*Session           `json:"sessions"`
	Singles  []*model.CatalogItem `json:"singles"`
	Inbox    []*model.CatalogItem `json:"inbox"`
}

// PartRequest 会话中一集的设置
type PartRequest struct {
	ItemID string   `json:"item_id" binding:"required"`
	Price  *float64 `json:"price"`
	Level  *int     `json:"level"`
}

// SessionRequest 创建或更新会话，分集顺序即 step 顺序，从 0 开始
type SessionRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Parts       []PartRequest `json:"parts" binding:"required,min=1,dive"`
}

// ItemUpdate 内容可编辑字段，nil 表示不修改
type ItemUpdate struct {
	Title     *string  `json:"title"`
	BasePrice *float64 `json:"base_price"`
	Level     *int     `json:"level"`
	Keywords  []string `json:"keywords"`
}

// MediaUpload 上传的媒体
type MediaUpload struct {
	Title       string
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// List 返回会话、单品和收件箱
func (s *Service) List(ctx context.Context, creatorID string) (*View, error) {
	items, err := s.repo.Catalog.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	g := GroupCatalog(items)
	return &View{Sessions: g.Sessions, Singles: g.Singles, Inbox: Inbox(items)}, nil
}

// Grouping 返回分组结果，供推荐使用
func (s *Service) Grouping(ctx context.Context, creatorID string) (Grouping, error) {
	items, err := s.repo.Catalog.ListByCreator(ctx, creatorID)
	if err != nil {
		return Grouping{}, fmt.Errorf("failed to list catalog: %w", err)
	}
	return GroupCatalog(items), nil
}

// CreateSession 用已有内容新建会话
func (s *Service) CreateSession(ctx context.Context, creatorID string, req *SessionRequest) (*Session, error) {
	return s.saveSession(ctx, creatorID, uuid.New().String(), req)
}

// UpdateSession 替换会话的名称和分集
func (s *Service) UpdateSession(ctx context.Context, creatorID, sessionID string, req *SessionRequest) (*Session, error) {
	g, err := s.Grouping(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if g.Find(sessionID) == nil {
		return nil, errs.NotFound("session not found", nil)
	}
	return s.saveSession(ctx, creatorID, sessionID, req)
}

func (s *Service) saveSession(ctx context.Context, creatorID, sessionID string, req *SessionRequest) (*Session, error) {
	if err := validateSession(req); err != nil {
		return nil, err
	}

	ids := make([]string, len(req.Parts))
	for i, p := range req.Parts {
		ids[i] = p.ItemID
	}
	items, err := s.repo.Catalog.GetByIDs(ctx, creatorID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	if len(items) != len(ids) {
		return nil, errs.NotFound("catalog item not found", nil)
	}
	for _, item := range items {
		if item.IsSingle {
			return nil, errs.Conflict(fmt.Sprintf("item %s is a single", item.ID))
		}
		if item.InSession() && *item.SessionID != sessionID {
			return nil, errs.Conflict(fmt.Sprintf("item %s already belongs to another session", item.ID))
		}
	}

	parts := make([]repository.SessionPart, len(req.Parts))
	for i, p := range req.Parts {
		parts[i] = repository.SessionPart{ItemID: p.ItemID, Step: i, Price: p.Price, Level: p.Level}
	}
	name := strings.TrimSpace(req.Name)
	if err := s.repo.Catalog.AssignSession(ctx, creatorID, sessionID, name, req.Description, parts); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("catalog item not found", err)
		}
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	g, err := s.Grouping(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	return g.Find(sessionID), nil
}

func validateSession(req *SessionRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errs.Validation("session name is required")
	}
	if len(req.Parts) == 0 {
		return errs.Validation("session needs at least one part")
	}
	seen := make(map[string]bool, len(req.Parts))
	for _, p := range req.Parts {
		if p.ItemID == "" {
			return errs.Validation("item_id is required")
		}
		if seen[p.ItemID] {
			return errs.Validation(fmt.Sprintf("item %s appears twice", p.ItemID))
		}
		seen[p.ItemID] = true
		if err := validatePricing(p.Price, p.Level); err != nil {
			return err
		}
	}
	return nil
}

func validatePricing(price *float64, level *int) error {
	if price != nil && *price < 0 {
		return errs.Validation("price must not be negative")
	}
	if level != nil && (*level < 1 || *level > 10) {
		return errs.Validation("level must be between 1 and 10")
	}
	return nil
}

// DeleteSession 解散会话，分集回到收件箱，内容本身不删除
func (s *Service) DeleteSession(ctx context.Context, creatorID, sessionID string) error {
	affected, err := s.repo.Catalog.ClearSession(ctx, creatorID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if affected == 0 {
		return errs.NotFound("session not found", nil)
	}
	s.logger.Info("session dissolved",
		zap.String("creator_id", creatorID),
		zap.String("session_id", sessionID),
		zap.Int64("parts", affected))
	return nil
}

// MarkSingle 标记为单品
func (s *Service) MarkSingle(ctx context.Context, creatorID, itemID string) (*model.CatalogItem, error) {
	return s.setSingle(ctx, creatorID, itemID, true)
}

// UnmarkSingle 取消单品标记
func (s *Service) UnmarkSingle(ctx context.Context, creatorID, itemID string) (*model.CatalogItem, error) {
	return s.setSingle(ctx, creatorID, itemID, false)
}

func (s *Service) setSingle(ctx context.Context, creatorID, itemID string, single bool) (*model.CatalogItem, error) {
	item, err := s.getItem(ctx, creatorID, itemID)
	if err != nil {
		return nil, err
	}
	if item.InSession() {
		return nil, errs.Conflict("item belongs to a session")
	}
	if err := s.repo.Catalog.SetSingle(ctx, creatorID, itemID, single); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Conflict("item belongs to a session")
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	item.IsSingle = single
	return item, nil
}

// UpdateItem 修改内容的标题、价格、尺度或关键词
func (s *Service) UpdateItem(ctx context.Context, creatorID, itemID string, req *ItemUpdate) (*model.CatalogItem, error) {
	if err := validatePricing(req.BasePrice, req.Level); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.BasePrice != nil {
		fields["base_price"] = *req.BasePrice
	}
	if req.Level != nil {
		fields["level"] = *req.Level
	}
	if req.Keywords != nil {
		kw := make([]string, 0, len(req.Keywords))
		for _, k := range req.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		fields["keywords"] = datatypes.JSONSlice[string](kw)
	}
	if len(fields) == 0 {
		return nil, errs.Validation("nothing to update")
	}

	if err := s.repo.Catalog.UpdateFields(ctx, creatorID, itemID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("catalog item not found", err)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return s.getItem(ctx, creatorID, itemID)
}

// ImportMedia 上传媒体并创建未组织的内容
func (s *Service) ImportMedia(ctx context.Context, creatorID string, up *MediaUpload) (*model.CatalogItem, error) {
	if up.Reader == nil || up.FileName == "" {
		return nil, errs.Validation("file is required")
	}

	key, url, err := s.media.Put(ctx, creatorID, up.FileName, up.ContentType, up.Size, up.Reader)
	if err != nil {
		return nil, errs.Upstream("failed to store media", err)
	}

	title := strings.TrimSpace(up.Title)
	if title == "" {
		title = up.FileName
	}
	item := &model.CatalogItem{
		ID:        uuid.New().String(),
		CreatorID: creatorID,
		Title:     title,
		MediaURLs: []string{url},
		MediaKeys: []string{key},
		Keywords:  []string{},
	}
	if err := s.repo.Catalog.Create(ctx, item); err != nil {
		// 入库失败时删除已上传的媒体
		if rmErr := s.media.Remove(ctx, key); rmErr != nil {
			s.logger.Warn("failed to remove orphan media", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// PurchasedSet 粉丝已购买的内容
func (s *Service) PurchasedSet(ctx context.Context, fanID string) (PurchasedSet, error) {
	ids, err := s.repo.Purchase.ItemIDsByFan(ctx, fanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}
	return NewPurchasedSet(ids), nil
}

func (s *Service) getItem(ctx context.Context, creatorID, itemID string) (*model.CatalogItem, error) {
	item, err := s.repo.Catalog.GetByID(ctx, creatorID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("catalog item not found", err)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}
