package model

import "time"

// Sender 消息发送方
type Sender string

const (
	SenderFan   Sender = "fan"
	SenderModel Sender = "model"
)

// Valid 是否为已知发送方
func (s Sender) Valid() bool {
	return s == SenderFan || s == SenderModel
}

// ChatMessage 粉丝与创作者之间的一条消息，创建后不可修改
// 同一创作者下平台消息 ID 唯一，本地消息的平台 ID 为 NULL
type ChatMessage struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	CreatorID         string    `gorm:"size:36;not null;index;uniqueIndex:idx_messages_platform" json:"creator_id"`
	FanID             string    `gorm:"size:36;not null;index:idx_messages_fan_sent" json:"fan_id"`
	PlatformMessageID *string   `gorm:"size:64;uniqueIndex:idx_messages_platform" json:"platform_message_id,omitempty"`
	Sender            Sender    `gorm:"size:10;not null" json:"sender"`
	Text              string    `gorm:"type:text" json:"text"`
	SentAt            time.Time `gorm:"not null;index:idx_messages_fan_sent" json:"sent_at"`
	IsPPV             bool      `gorm:"default:false" json:"is_ppv"`
	PPVPrice          float64   `gorm:"default:0" json:"ppv_price"`
	Purchased         bool      `gorm:"default:false" json:"purchased"`
	CatalogItemID     *string   `gorm:"size:36" json:"catalog_item_id,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (ChatMessage) TableName() string {
	return "chat_messages"
}
