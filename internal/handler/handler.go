package handler

import (
	"github.com/ashwinyue/next-fans/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	Creator    *CreatorHandler
	Fan        *FanHandler
	Catalog    *CatalogHandler
	Suggestion *SuggestionHandler
	Webhook    *WebhookHandler
	Media      *MediaHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		Creator:    NewCreatorHandler(svc.Creator),
		Fan:        NewFanHandler(svc.Fan, svc.Sender),
		Catalog:    NewCatalogHandler(svc.Catalog),
		Suggestion: NewSuggestionHandler(svc.Suggestion),
		Webhook:    NewWebhookHandler(svc.Fan),
		Media:      NewMediaHandler(svc.File),
	}
}
