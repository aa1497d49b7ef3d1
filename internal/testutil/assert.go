package testutil

import (
	"strings"
	"testing"
)

// AssertHelper 提供断言相关的测试辅助
type AssertHelper struct {
	t *testing.T
}

// NewAssertHelper 创建断言辅助器
func NewAssertHelper(t *testing.T) *AssertHelper {
	return &AssertHelper{t: t}
}

// NoError 断言没有错误
func (h *AssertHelper) NoError(err error, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("Unexpected error: %v %v", err, msgAndArgs)
	}
}

// Error 断言有错误
func (h *AssertHelper) Error(err error, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err == nil {
		h.t.Fatalf("Expected error, got nil %v", msgAndArgs)
	}
}

// ErrorContains 断言错误包含指定字符串
func (h *AssertHelper) ErrorContains(err error, substr string) {
	h.t.Helper()
	if err == nil {
		h.t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), substr) {
		h.t.Fatalf("Error %q does not contain %q", err.Error(), substr)
	}
}

// Equal 断言相等
func (h *AssertHelper) Equal(expected, actual interface{}, msgAndArgs ...interface{}) {
	h.t.Helper()
	if expected != actual {
		h.t.Fatalf("Expected %v, got %v %v", expected, actual, msgAndArgs)
	}
}

// True 断言为真
func (h *AssertHelper) True(condition bool, msgAndArgs ...interface{}) {
	h.t.Helper()
	if !condition {
		h.t.Fatalf("Expected true, got false %v", msgAndArgs)
	}
}

// False 断言为假
func (h *AssertHelper) False(condition bool, msgAndArgs ...interface{}) {
	h.t.Helper()
	if condition {
		h.t.Fatalf("Expected false, got true %v", msgAndArgs)
	}
}
