package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/next-fans/internal/errs"
)

// Response 统一响应格式，code 为 0 表示成功
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RateLimitData 配额耗尽时返回的数据
type RateLimitData struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"reset_at"`
}

// Success 成功响应 (200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data})
}

// Created 创建成功响应 (201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "ok", Data: data})
}

// NoContent 无内容响应 (204)
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg})
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg})
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: msg})
}

// Error 根据错误类型返回相应的错误响应
func Error(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var rl *errs.RateLimitError
	if errors.As(err, &rl) {
		c.JSON(http.StatusTooManyRequests, Response{
			Code:    http.StatusTooManyRequests,
			Message: rl.Error(),
			Data:    RateLimitData{Remaining: rl.Remaining, Limit: rl.Limit, ResetAt: rl.ResetAt},
		})
		return
	}

	status := http.StatusInternalServerError
	switch errs.Code(err) {
	case errs.CodeValidation:
		status = http.StatusBadRequest
	case errs.CodeAuth:
		status = http.StatusUnauthorized
	case errs.CodeNotFound:
		status = http.StatusNotFound
	case errs.CodeConflict:
		status = http.StatusConflict
	case errs.CodeUpstream:
		// 上游错误信息原样返回
	default:
		zap.L().Error("Unhandled error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, Response{Code: status, Message: "internal server error"})
		return
	}

	msg := err.Error()
	var appErr *errs.Error
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		msg = appErr.Message()
	}
	c.JSON(status, Response{Code: status, Message: msg})
}
