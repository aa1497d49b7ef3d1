package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ashwinyue/next-fans/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository AI 调用计数数据访问
type UsageRepository struct {
	db *gorm.DB
}

// NewUsageRepository 创建计数仓库
func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Increment 在未达到 limit 时原子加一
// 返回加一后的次数；达到上限时 ok 为 false 且计数不变
func (r *UsageRepository) Increment(ctx context.Context, creatorID, day string, limit int) (calls int, ok bool, err error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "creator_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"calls":      gorm.Expr("ai_usage.calls + 1"),
			"updated_at": time.Now().UTC(),
		}),
		Where: clause.Where{Exprs: []clause.Expression{gorm.Expr("ai_usage.calls < ?", limit)}},
	}).Create(&model.AIUsage{CreatorID: creatorID, Day: day, Calls: 1})
	if res.Error != nil {
		return 0, false, res.Error
	}

	calls, err = r.Get(ctx, creatorID, day)
	if err != nil {
		return 0, false, err
	}
	return calls, res.RowsAffected > 0, nil
}

// Get 获取当日调用次数
func (r *UsageRepository) Get(ctx context.Context, creatorID, day string) (int, error) {
	var usage model.AIUsage
	err := r.db.WithContext(ctx).Where("creator_id = ? AND day = ?", creatorID, day).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return usage.Calls, nil
}
