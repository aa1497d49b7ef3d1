package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-fans/internal/middleware"
	"github.com/ashwinyue/next-fans/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, user)
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, resp)
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	resp, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, resp)
}

// Me 当前用户
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not authenticated")
		return
	}
	Success(c, user)
}
