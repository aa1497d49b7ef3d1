package repository

import (
	"context"
	"time"

	"github.com/ashwinyue/next-fans/internal/model"
	"gorm.io/gorm"
)

// FanRepository 粉丝数据访问
type FanRepository struct {
	db *gorm.DB
}

// NewFanRepository 创建粉丝仓库
func NewFanRepository(db *gorm.DB) *FanRepository {
	return &FanRepository{db: db}
}

// Create 创建粉丝
func (r *FanRepository) Create(ctx context.Context, fan *model.Fan) error {
	return r.db.WithContext(ctx).Create(fan).Error
}

// GetByID 获取创作者名下的粉丝
func (r *FanRepository) GetByID(ctx context.Context, creatorID, id string) (*model.Fan, error) {
	var fan model.Fan
	err := r.db.WithContext(ctx).Where("creator_id = ? AND id = ?", creatorID, id).First(&fan).Error
	if err != nil {
		return nil, err
	}
	return &fan, nil
}

// GetByPlatformID 根据平台粉丝 ID 获取
func (r *FanRepository) GetByPlatformID(ctx context.Context, creatorID, platformFanID string) (*model.Fan, error) {
	var fan model.Fan
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND platform_fan_id = ?", creatorID, platformFanID).
		First(&fan).Error
	if err != nil {
		return nil, err
	}
	return &fan, nil
}

// ListByCreator 列出创作者的全部粉丝
func (r *FanRepository) ListByCreator(ctx context.Context, creatorID string) ([]*model.Fan, error) {
	var fans []*model.Fan
	err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Order("created_at ASC").Find(&fans).Error
	return fans, err
}

// UpdateFields 更新指定字段
func (r *FanRepository) UpdateFields(ctx context.Context, creatorID, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Fan{}).
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

// AppendNotes 在备注末尾追加一行
func (r *FanRepository) AppendNotes(ctx context.Context, id, note string) error {
	return r.db.WithContext(ctx).Model(&model.Fan{}).Where("id = ?", id).
		Update("notes", gorm.Expr("CASE WHEN notes IS NULL OR notes = '' THEN ? ELSE notes || ? END", note, "\n"+note)).
		Error
}

// AddSpend 原子累加消费金额
func (r *FanRepository) AddSpend(ctx context.Context, id string, amount float64) error {
	return r.db.WithContext(ctx).Model(&model.Fan{}).Where("id = ?", id).
		Update("spent_total", gorm.Expr("spent_total + ?", amount)).
		Error
}

// TouchMessage 消息计数加一，并把最后消息时间推进到 at
func (r *FanRepository) TouchMessage(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Fan{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"message_count":   gorm.Expr("message_count + 1"),
			"last_message_at": gorm.Expr("CASE WHEN last_message_at IS NULL OR last_message_at < ? THEN ? ELSE last_message_at END", at, at),
		}).Error
}

// PromoteTiers 按累计消费提升等级，只升不降
func (r *FanRepository) PromoteTiers(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Fan{}).
			Where("spent_total >= ? AND tier < ?", model.WhaleSpendThreshold, model.TierWhale).
			Update("tier", model.TierWhale)
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected

		res = tx.Model(&model.Fan{}).
			Where("spent_total >= ? AND tier < ?", model.VIPSpendThreshold, model.TierVIP).
			Update("tier", model.TierVIP)
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		return nil
	})
	return total, err
}
