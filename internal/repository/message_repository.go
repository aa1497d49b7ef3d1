package repository

import (
	"context"
	"time"

	"github.com/ashwinyue/next-fans/internal/model"
	"gorm.io/gorm"
)

// MessageRepository 聊天消息数据访问
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息仓库
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建消息
func (r *MessageRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListBefore 获取粉丝在 before 之前的最近 limit 条消息（按时间倒序）
func (r *MessageRepository) ListBefore(ctx context.Context, fanID string, before *time.Time, limit int) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	query := r.db.WithContext(ctx).Where("fan_id = ?", fanID)
	if before != nil {
		query = query.Where("sent_at < ?", *before)
	}
	err := query.Order("sent_at DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

// LatestPerFan 获取创作者每个粉丝的最后一条消息
func (r *MessageRepository) LatestPerFan(ctx context.Context, creatorID string) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	err := r.db.WithContext(ctx).
		Table("chat_messages AS m").
		Select("m.*").
		Where("m.creator_id = ? AND m.sent_at = (SELECT MAX(i.sent_at) FROM chat_messages i WHERE i.fan_id = m.fan_id)", creatorID).
		Find(&messages).Error
	return messages, err
}
