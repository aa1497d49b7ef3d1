package suggestion

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/ashwinyue/next-fans/internal/config"
)

// NewChatModel 按配置创建对话模型
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIChatModel(ctx, &cfg.OpenAI)
	case "gemini":
		return NewGeminiChatModel(ctx, &cfg.Gemini)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// newOpenAIChatModel 创建 OpenAI 兼容的对话模型
func newOpenAIChatModel(ctx context.Context, cfg *config.OpenAIConfig) (model.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required for provider: openai")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	temperature := float32(0.8)

	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       modelName,
		Timeout:     timeout,
		Temperature: &temperature,
	})
}
