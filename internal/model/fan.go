package model

import "time"

// Fan 粉丝
type Fan struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	CreatorID     string     `gorm:"size:36;not null;uniqueIndex:idx_fans_creator_platform" json:"creator_id"`
	PlatformFanID string     `gorm:"size:64;not null;uniqueIndex:idx_fans_creator_platform" json:"platform_fan_id"`
	Name          string     `gorm:"size:255" json:"name"`
	Username      string     `gorm:"size:255" json:"username"`
	Tier          Tier       `gorm:"default:0;index" json:"tier"`
	SpentTotal    float64    `gorm:"default:0" json:"spent_total"`
	MessageCount  int        `gorm:"default:0" json:"message_count"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`
	Notes         string     `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Fan) TableName() string {
	return "fans"
}
