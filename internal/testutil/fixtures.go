// Package testutil 提供测试辅助工具
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ashwinyue/next-fans/internal/model"
)

// NewTestDB 创建独立的内存 SQLite 数据库并完成迁移
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Fan 构造粉丝
func Fan(tier model.Tier, spent float64, lastMessage time.Time) *model.Fan {
	last := lastMessage
	return &model.Fan{
		ID:            uuid.NewString(),
		CreatorID:     "creator-1",
		PlatformFanID: uuid.NewString(),
		Name:          "fan",
		Tier:          tier,
		SpentTotal:    spent,
		LastMessageAt: &last,
	}
}

// Message 构造消息
func Message(fanID string, sender model.Sender, text string, at time.Time) *model.ChatMessage {
	return &model.ChatMessage{
		ID:        uuid.NewString(),
		CreatorID: "creator-1",
		FanID:     fanID,
		Sender:    sender,
		Text:      text,
		SentAt:    at,
	}
}

// SessionItem 构造会话分集
func SessionItem(id, sessionID string, step int, price float64) model.CatalogItem {
	sid := sessionID
	s := step
	return model.CatalogItem{
		ID:          id,
		CreatorID:   "creator-1",
		Title:       fmt.Sprintf("%s part %d", sessionID, step),
		BasePrice:   price,
		SessionID:   &sid,
		SessionName: sessionID,
		StepNumber:  &s,
	}
}

// SingleItem 构造单品
func SingleItem(id string, price float64, level int) model.CatalogItem {
	return model.CatalogItem{
		ID:        id,
		CreatorID: "creator-1",
		Title:     "single " + id,
		BasePrice: price,
		Level:     level,
		IsSingle:  true,
	}
}
