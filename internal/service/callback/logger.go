// Package callback 记录 Eino 组件调用的耗时与 token 用量
package callback

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

type startKey struct{}

// Logger 日志回调处理器，实现 callbacks.Handler
type Logger struct {
	log *zap.Logger
}

// NewLogger 创建日志回调处理器
func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

// OnStart 记录开始时间
func (l *Logger) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	fields := l.fields(info)
	if in := model.ConvCallbackInput(input); in != nil {
		fields = append(fields, zap.Int("messages", len(in.Messages)))
	}
	l.log.Debug("Component started", fields...)
	return context.WithValue(ctx, startKey{}, time.Now())
}

// OnEnd 记录耗时和 token 用量
func (l *Logger) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	fields := append(l.fields(info), zap.Duration("elapsed", elapsed(ctx)))
	if out := model.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", out.TokenUsage.PromptTokens),
			zap.Int("completion_tokens", out.TokenUsage.CompletionTokens))
	}
	l.log.Info("Component finished", fields...)
	return ctx
}

// OnError 组件执行出错时调用
func (l *Logger) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	fields := append(l.fields(info), zap.Duration("elapsed", elapsed(ctx)), zap.Error(err))
	l.log.Warn("Component failed", fields...)
	return ctx
}

// OnStartWithStreamInput 流式输入，只需关闭
func (l *Logger) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return context.WithValue(ctx, startKey{}, time.Now())
}

// OnEndWithStreamOutput 流式输出，只需关闭
func (l *Logger) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	l.log.Info("Component stream finished", append(l.fields(info), zap.Duration("elapsed", elapsed(ctx)))...)
	return ctx
}

func (l *Logger) fields(info *callbacks.RunInfo) []zap.Field {
	if info == nil {
		return nil
	}
	return []zap.Field{
		zap.String("name", info.Name),
		zap.String("type", info.Type),
		zap.String("component", string(info.Component)),
	}
}

func elapsed(ctx context.Context) time.Duration {
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}

// SetupGlobalCallbacks 注册全局回调
func SetupGlobalCallbacks(log *zap.Logger) {
	callbacks.AppendGlobalHandlers(NewLogger(log))
}
