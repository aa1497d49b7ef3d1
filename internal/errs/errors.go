// Package errs 定义应用错误分类
// handler 层根据错误码映射 HTTP 状态码
package errs

import (
	"errors"
	"fmt"
	"time"
)

// 错误码
const (
	CodeUnknown    = "UNKNOWN"
	CodeValidation = "VALIDATION"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeRateLimit  = "RATE_LIMIT"
	CodeUpstream   = "UPSTREAM"
	CodeAuth       = "UNAUTHORIZED"
)

// Error 应用错误
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Code 返回错误码
func (e *Error) Code() string {
	return e.code
}

// Message 返回不含底层错误的描述
func (e *Error) Message() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code 提取错误码，非应用错误返回 CodeUnknown
func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.code
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return CodeRateLimit
	}
	return CodeUnknown
}

// Validation 参数校验错误 (400)
func Validation(message string) error {
	return &Error{code: CodeValidation, message: message}
}

// NotFound 资源不存在 (404)
func NotFound(message string, cause error) error {
	return &Error{code: CodeNotFound, message: message, err: cause}
}

// Conflict 资源冲突 (409)
func Conflict(message string) error {
	return &Error{code: CodeConflict, message: message}
}

// Upstream 上游服务失败 (500)，原样返回给调用方
func Upstream(message string, cause error) error {
	return &Error{code: CodeUpstream, message: message, err: cause}
}

// Unauthorized 认证失败 (401)
func Unauthorized(message string) error {
	return &Error{code: CodeAuth, message: message}
}

// RateLimitError 配额耗尽 (429)
type RateLimitError struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("daily AI usage limit of %d reached", e.Limit)
}

// IsNotFound 判断是否为不存在错误
func IsNotFound(err error) bool {
	return Code(err) == CodeNotFound
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	return Code(err) == CodeValidation
}
