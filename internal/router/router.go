package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/next-fans/internal/config"
	"github.com/ashwinyue/next-fans/internal/handler"
	"github.com/ashwinyue/next-fans/internal/middleware"
	"github.com/ashwinyue/next-fans/internal/service"
	"github.com/ashwinyue/next-fans/internal/service/file"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc *service.Services, h *handler.Handlers, db Pinger, log *zap.Logger) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.LoggingMiddleware(log.Named("http")))
	r.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})

	// 本地存储的媒体
	if svc.File.Type() == file.StorageTypeLocal {
		prefix := "/" + strings.Trim(cfg.Storage.Local.URLPrefix, "/")
		r.GET(prefix+"/*key", h.Media.Serve)
	}

	// 平台推送
	r.POST("/webhooks/messages", middleware.RequireWebhookSecret(cfg.Platform.WebhookSecret), h.Webhook.Message)

	// API v1
	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/refresh", h.Auth.RefreshToken)
			authGroup.GET("/me", middleware.RequireAuth(svc.Auth), h.Auth.Me)
		}

		creators := v1.Group("/creators", middleware.RequireAuth(svc.Auth))
		{
			creators.POST("", h.Creator.Create)
			creators.GET("", h.Creator.List)
			creators.GET("/:id", h.Creator.Get)
			creators.PUT("/:id/credential", h.Creator.SetCredential)

			// 以下路由校验创作者归属
			owned := creators.Group("/:id", middleware.RequireCreator(svc.Creator, "id"))
			{
				owned.GET("/quota", h.Suggestion.Quota)

				fans := owned.Group("/fans")
				{
					fans.GET("", h.Fan.List)
					fans.GET("/:fan_id", h.Fan.Get)
					fans.PATCH("/:fan_id", h.Fan.Update)
					fans.GET("/:fan_id/messages", h.Fan.Messages)
					fans.POST("/:fan_id/suggestion", h.Suggestion.Suggest)
					fans.POST("/:fan_id/send", h.Fan.Send)
					fans.POST("/:fan_id/purchases", h.Fan.RecordPurchase)
				}

				cat := owned.Group("/catalog")
				{
					cat.GET("", h.Catalog.List)
					cat.POST("/media", h.Catalog.UploadMedia)
					cat.PATCH("/items/:item_id", h.Catalog.UpdateItem)
					cat.POST("/items/:item_id/single", h.Catalog.MarkSingle)
					cat.DELETE("/items/:item_id/single", h.Catalog.UnmarkSingle)
					cat.POST("/sessions", h.Catalog.CreateSession)
					cat.PUT("/sessions/:session_id", h.Catalog.UpdateSession)
					cat.DELETE("/sessions/:session_id", h.Catalog.DeleteSession)
				}
			}
		}
	}

	return r
}
