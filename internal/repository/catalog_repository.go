package repository

import (
	"context"

	"github.com/ashwinyue/next-fans/internal/model"
	"gorm.io/gorm"
)

// CatalogRepository 内容目录数据访问
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓库
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// SessionPart 会话中的一集
type SessionPart struct {
	ItemID string
	Step   int
	Price  *float64
	Level  *int
}

// Create 创建内容
func (r *CatalogRepository) Create(ctx context.Context, item *model.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID 获取内容
func (r *CatalogRepository) GetByID(ctx context.Context, creatorID, id string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	err := r.db.WithContext(ctx).Where("creator_id = ? AND id = ?", creatorID, id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDs 批量获取内容
func (r *CatalogRepository) GetByIDs(ctx context.Context, creatorID string, ids []string) ([]*model.CatalogItem, error) {
	var items []*model.CatalogItem
	err := r.db.WithContext(ctx).Where("creator_id = ? AND id IN ?", creatorID, ids).Find(&items).Error
	return items, err
}

// ListByCreator 按入库顺序列出创作者的全部内容
func (r *CatalogRepository) ListByCreator(ctx context.Context, creatorID string) ([]*model.CatalogItem, error) {
	var items []*model.CatalogItem
	err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Order("created_at ASC, id ASC").Find(&items).Error
	return items, err
}

// UpdateFields 更新内容字段
func (r *CatalogRepository) UpdateFields(ctx context.Context, creatorID, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.CatalogItem{}).
		Where("creator_id = ? AND id = ?", creatorID, id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AssignSession 用 parts 替换会话的全部分集
// 保留的分集沿用原有价格和尺度，被移出的分集回到收件箱
func (r *CatalogRepository) AssignSession(ctx context.Context, creatorID, sessionID, name, description string, parts []SessionPart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kept := make([]string, 0, len(parts))
		for _, p := range parts {
			kept = append(kept, p.ItemID)
		}
		dropped := tx.Model(&model.CatalogItem{}).
			Where("creator_id = ? AND session_id = ?", creatorID, sessionID)
		if len(kept) > 0 {
			dropped = dropped.Where("id NOT IN ?", kept)
		}
		if err := dropped.Updates(sessionReset()).Error; err != nil {
			return err
		}

		for _, p := range parts {
			fields := map[string]interface{}{
				"session_id":          sessionID,
				"session_name":        name,
				"session_description": description,
				"step_number":         p.Step,
				"is_single":           false,
			}
			if p.Price != nil {
				fields["base_price"] = *p.Price
			}
			if p.Level != nil {
				fields["level"] = *p.Level
			}
			res := tx.Model(&model.CatalogItem{}).
				Where("creator_id = ? AND id = ?", creatorID, p.ItemID).
				Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// ClearSession 解散会话：清空组织字段，保留内容行
func (r *CatalogRepository) ClearSession(ctx context.Context, creatorID, sessionID string) (int64, error) {
	return clearSession(r.db.WithContext(ctx), creatorID, sessionID)
}

func clearSession(db *gorm.DB, creatorID, sessionID string) (int64, error) {
	res := db.Model(&model.CatalogItem{}).
		Where("creator_id = ? AND session_id = ?", creatorID, sessionID).
		Updates(sessionReset())
	return res.RowsAffected, res.Error
}

// sessionReset 分集回到收件箱时清空的字段
func sessionReset() map[string]interface{} {
	return map[string]interface{}{
		"session_id":          nil,
		"session_name":        "",
		"session_description": "",
		"step_number":         nil,
		"base_price":          0,
		"level":               0,
	}
}

// SetSingle 标记或取消单品
func (r *CatalogRepository) SetSingle(ctx context.Context, creatorID, id string, single bool) error {
	res := r.db.WithContext(ctx).Model(&model.CatalogItem{}).
		Where("creator_id = ? AND id = ? AND session_id IS NULL", creatorID, id).
		Update("is_single", single)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
