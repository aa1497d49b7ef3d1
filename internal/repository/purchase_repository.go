package repository

import (
	"context"

	"github.com/ashwinyue/next-fans/internal/model"
	"gorm.io/gorm"
)

// PurchaseRepository 购买记录数据访问
type PurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository 创建购买记录仓库
func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create 追加购买记录
func (r *PurchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// ItemIDsByFan 粉丝已购买的内容 ID
func (r *PurchaseRepository) ItemIDsByFan(ctx context.Context, fanID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("fan_id = ?", fanID).
		Distinct().
		Pluck("catalog_item_id", &ids).Error
	return ids, err
}

// ListByFan 粉丝的购买记录（按时间倒序）
func (r *PurchaseRepository) ListByFan(ctx context.Context, fanID string) ([]*model.Purchase, error) {
	var purchases []*model.Purchase
	err := r.db.WithContext(ctx).Where("fan_id = ?", fanID).Order("purchased_at DESC").Find(&purchases).Error
	return purchases, err
}
