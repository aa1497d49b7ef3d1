package suggestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/ashwinyue/next-fans/internal/config"
)

// 成人内容平台的对话，不能被默认安全策略拦截
var geminiSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// GeminiChatModel 把 Gemini 适配为 eino 对话模型
type GeminiChatModel struct {
	client    *genai.Client
	modelName string
}

// NewGeminiChatModel 创建 Gemini 对话模型
func NewGeminiChatModel(ctx context.Context, cfg *config.GeminiConfig) (*GeminiChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api_key is required for provider: gemini")
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiChatModel{client: client, modelName: modelName}, nil
}

// Generate 单次生成
func (m *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (out *schema.Message, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, m.GetType(), components.ComponentOfChatModel)
	ctx = callbacks.OnStart(ctx, &model.CallbackInput{Messages: input})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	system, contents := toGeminiContents(input)

	genCfg := &genai.GenerateContentConfig{
		SafetySettings:   geminiSafetySettings,
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	common := model.GetCommonOptions(nil, opts...)
	if common.Temperature != nil {
		genCfg.Temperature = common.Temperature
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.modelName, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	out = schema.AssistantMessage(sb.String(), nil)

	cbOut := &model.CallbackOutput{Message: out}
	if u := resp.UsageMetadata; u != nil {
		cbOut.TokenUsage = &model.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	callbacks.OnEnd(ctx, cbOut)
	return out, nil
}

// GetType 组件类型名
func (m *GeminiChatModel) GetType() string {
	return "Gemini"
}

// IsCallbacksEnabled Generate 自行触发回调
func (m *GeminiChatModel) IsCallbacksEnabled() bool {
	return true
}

// Stream 不支持流式输出
func (m *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("gemini chat model does not support streaming")
}

// toGeminiContents 拆出系统提示，其余消息按角色转换
func toGeminiContents(input []*schema.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(input))
	for _, msg := range input {
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	return strings.Join(system, "\n\n"), contents
}
