package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ashwinyue/next-fans/internal/config"
)

func TestNew(t *testing.T) {
	l, err := New(config.LogConfig{Level: "debug", Format: "text"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), false)

	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("record not found should not be logged, got %d entries", logs.Len())
	}

	gl.Trace(context.Background(), time.Now(), sql, errors.New("connection reset"))
	if logs.FilterMessage("database query failed").Len() != 1 {
		t.Error("expected query failure to be logged")
	}

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	if logs.FilterMessage("slow query").Len() != 1 {
		t.Error("expected slow query warning")
	}

	silent := gl.LogMode(gormlogger.Silent)
	before := logs.Len()
	silent.Trace(context.Background(), time.Now().Add(-time.Second), sql, errors.New("ignored"))
	if logs.Len() != before {
		t.Error("silent mode should not log")
	}
}
