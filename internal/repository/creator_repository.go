package repository

import (
	"context"

	"github.com/ashwinyue/next-fans/internal/model"
	"gorm.io/gorm"
)

// CreatorRepository 创作者数据访问
type CreatorRepository struct {
	db *gorm.DB
}

// NewCreatorRepository 创建创作者仓库
func NewCreatorRepository(db *gorm.DB) *CreatorRepository {
	return &CreatorRepository{db: db}
}

// Create 创建创作者
func (r *CreatorRepository) Create(ctx context.Context, creator *model.Creator) error {
	return r.db.WithContext(ctx).Create(creator).Error
}

// GetByID 获取创作者
func (r *CreatorRepository) GetByID(ctx context.Context, id string) (*model.Creator, error) {
	var creator model.Creator
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&creator).Error; err != nil {
		return nil, err
	}
	return &creator, nil
}

// ListByOwner 列出账号下的创作者
func (r *CreatorRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Creator, error) {
	var creators []*model.Creator
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&creators).Error
	return creators, err
}

// ListIDs 列出所有创作者 ID
func (r *CreatorRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Creator{}).Pluck("id", &ids).Error
	return ids, err
}

// UpdateCredential 保存加密后的平台凭证
func (r *CreatorRepository) UpdateCredential(ctx context.Context, id, encrypted string) error {
	res := r.db.WithContext(ctx).Model(&model.Creator{}).Where("id = ?", id).
		Update("encrypted_credential", encrypted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByPlatformAccountID 根据平台账号 ID 获取创作者
func (r *CreatorRepository) GetByPlatformAccountID(ctx context.Context, accountID string) (*model.Creator, error) {
	var creator model.Creator
	if err := r.db.WithContext(ctx).Where("platform_account_id = ?", accountID).First(&creator).Error; err != nil {
		return nil, err
	}
	return &creator, nil
}
