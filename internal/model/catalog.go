package model

import (
	"time"

	"gorm.io/datatypes"
)

// CatalogItem 可售内容
// 一个内容只能属于一种组织方式：会话分集或单品
type CatalogItem struct {
	ID                 string                      `gorm:"primaryKey;size:36" json:"id"`
	CreatorID          string                      `gorm:"size:36;not null;index" json:"creator_id"`
	Title              string                      `gorm:"size:255" json:"title"`
	BasePrice          float64                     `gorm:"default:0" json:"base_price"`
	Level              int                         `gorm:"default:0" json:"level"` // 尺度 1-10，0 表示未设置
	MediaURLs          datatypes.JSONSlice[string] `json:"media_urls"`
	MediaKeys          datatypes.JSONSlice[string] `json:"-"`
	Keywords           datatypes.JSONSlice[string] `json:"keywords"`
	SessionID          *string                     `gorm:"size:36;index" json:"session_id,omitempty"`
	SessionName        string                      `gorm:"size:255" json:"session_name,omitempty"`
	SessionDescription string                      `gorm:"type:text" json:"session_description,omitempty"`
	StepNumber         *int                        `json:"step_number,omitempty"`
	IsSingle           bool                        `gorm:"default:false;index" json:"is_single"`
	CreatedAt          time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (CatalogItem) TableName() string {
	return "catalog_items"
}

// InSession 是否为会话分集
func (i *CatalogItem) InSession() bool {
	return i.SessionID != nil && i.StepNumber != nil
}

// Organized 是否已归入会话或单品
func (i *CatalogItem) Organized() bool {
	return i.InSession() || i.IsSingle
}

// Purchase 购买记录，只追加
type Purchase struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	CreatorID     string    `gorm:"size:36;not null;index" json:"creator_id"`
	FanID         string    `gorm:"size:36;not null;index" json:"fan_id"`
	CatalogItemID string    `gorm:"size:36;not null;index" json:"catalog_item_id"`
	Price         float64   `gorm:"not null" json:"price"`
	PurchasedAt   time.Time `gorm:"not null" json:"purchased_at"`
}

// TableName 指定表名
func (Purchase) TableName() string {
	return "purchases"
}
