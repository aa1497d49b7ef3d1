package model

import "time"

// Creator 创作者（平台上的 model 账号）
type Creator struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID             string    `gorm:"size:36;not null;index" json:"owner_id"`
	Name                string    `gorm:"size:255;not null" json:"name"`
	PlatformAccountID   string    `gorm:"size:64;index" json:"platform_account_id"`
	Persona             string    `gorm:"type:text" json:"persona"` // 回复风格描述，用于提示词
	EncryptedCredential string    `gorm:"type:text" json:"-"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Creator) TableName() string {
	return "creators"
}

// HasCredential 是否已保存平台凭证
func (c *Creator) HasCredential() bool {
	return c.EncryptedCredential != ""
}

// AIUsage 每日 AI 调用计数
type AIUsage struct {
	CreatorID string    `gorm:"primaryKey;size:36"`
	Day       string    `gorm:"primaryKey;size:10"` // YYYY-MM-DD (UTC)
	Calls     int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (AIUsage) TableName() string {
	return "ai_usage"
}
