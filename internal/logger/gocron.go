package logger

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// gocronLogger 将 gocron 日志输出到 zap
type gocronLogger struct {
	log *zap.SugaredLogger
}

// NewGocronLogger 创建 gocron 日志适配器
func NewGocronLogger(l *zap.Logger) gocron.Logger {
	return &gocronLogger{log: l.Named("scheduler").Sugar()}
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.log.Debugw(msg, args...) }
func (l *gocronLogger) Info(msg string, args ...any)  { l.log.Infow(msg, args...) }
func (l *gocronLogger) Warn(msg string, args ...any)  { l.log.Warnw(msg, args...) }
func (l *gocronLogger) Error(msg string, args ...any) { l.log.Errorw(msg, args...) }
