package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-fans/internal/model"
)

// 上下文键
const (
	ContextUser      = "user"
	ContextUserID    = "user_id"
	ContextCreatorID = "creator_id"
)

// WebhookSecretHeader webhook 共享密钥请求头
const WebhookSecretHeader = "X-Webhook-Secret"

// TokenValidator 校验访问令牌
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

// CreatorAccess 校验用户是否可访问创作者
type CreatorAccess interface {
	Get(ctx context.Context, ownerID, id string) (*model.Creator, error)
}

// RequireAuth 要求有效认证的中间件
// 必须提供有效的 JWT token，否则返回 401
func RequireAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, 401, "Missing Authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, 401, "Invalid Authorization header format")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		user, err := auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abort(c, 401, "Invalid or expired token")
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Next()
	}
}

// RequireCreator 校验路径中的创作者属于当前用户
func RequireCreator(creators CreatorAccess, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := GetUserID(c)
		creator, err := creators.Get(c.Request.Context(), userID, c.Param(param))
		if err != nil {
			// 不区分不存在与无权限
			abort(c, 404, "creator not found")
			return
		}
		c.Set(ContextCreatorID, creator.ID)
		c.Next()
	}
}

// RequireWebhookSecret 校验 webhook 共享密钥，secret 为空时拒绝所有请求
func RequireWebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(WebhookSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			abort(c, 401, "invalid webhook secret")
			return
		}
		c.Next()
	}
}

// GetCurrentUser 从上下文获取当前用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetUserID 从上下文获取当前用户ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetCreatorID 从上下文获取已校验的创作者ID
func GetCreatorID(c *gin.Context) string {
	return c.GetString(ContextCreatorID)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    status,
		"message": msg,
	})
}
