package suggestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/service/priority"
)

// PromptConfig 提示词配置
type PromptConfig struct {
	// SystemPrompt 系统提示词（Go 模板）
	SystemPrompt string `json:"system_prompt"`
	// UserPrompt 用户提示词（Go 模板）
	UserPrompt string `json:"user_prompt"`
}

// DefaultPromptConfig 返回默认提示词
func DefaultPromptConfig() *PromptConfig {
	return &PromptConfig{
		SystemPrompt: `You are the chat assistant of {{.CreatorName}}, a content creator talking to a paying fan.
{{if .Persona}}Write in this voice: {{.Persona}}
{{end}}Reply in the fan's language, keep it short and personal, never mention you are an assistant.

Rules:
1. If the action is "give support", be warm and do not sell anything.
2. Only offer the recommended content when one is given, at exactly the given price.
3. Never offer content the fan already bought and never skip ahead in a session.
4. If the fan reveals personal facts (name, birthday, job, likes), put them in "fan_info".

Return ONLY a JSON object:
{"message": "<reply to send>", "offer": <true if the reply offers the recommended content>, "fan_info": "<new facts or empty>", "reasoning": "<one sentence>"}`,
		UserPrompt: `Fan: {{.FanName}} | tier: {{.Tier}} | lifetime spend: ${{printf "%.2f" .Spent}}
Status: {{.Color}} {{.Label}} ({{.Description}}), action: {{.Action}}
{{if .Notes}}Known facts: {{.Notes}}
{{end}}{{if .Offer}}Recommended content: "{{.Offer.Title}}"{{if .Offer.Session}} (session "{{.Offer.Session}}", part {{.Offer.Step}}){{end}}, level {{.Offer.Level}}, price ${{printf "%.2f" .Offer.Price}}
{{else}}Recommended content: none
{{end}}
Conversation (oldest first):
{{.History}}

Write the next reply.`,
	}
}

// PromptInput 渲染提示词所需的上下文
type PromptInput struct {
	Creator        *model.Creator
	Fan            *model.Fan
	Semaphore      priority.Semaphore
	History        []*model.ChatMessage // 时间升序
	Recommendation *Recommendation
}

type offerVars struct {
	Title   string
	Session string
	Step    int
	Level   int
	Price   float64
}

// Prompt 基于 eino ChatTemplate 渲染提示词
type Prompt struct {
	template prompt.ChatTemplate
}

// NewPrompt 创建提示词模板
func NewPrompt(cfg *PromptConfig) *Prompt {
	if cfg == nil {
		cfg = DefaultPromptConfig()
	}
	return &Prompt{
		template: prompt.FromMessages(schema.GoTemplate,
			schema.SystemMessage(cfg.SystemPrompt),
			schema.UserMessage(cfg.UserPrompt),
		),
	}
}

// Render 渲染消息列表
func (p *Prompt) Render(ctx context.Context, in *PromptInput) ([]*schema.Message, error) {
	vars := map[string]any{
		"CreatorName": in.Creator.Name,
		"Persona":     in.Creator.Persona,
		"FanName":     fanName(in.Fan),
		"Tier":        in.Fan.Tier.String(),
		"Spent":       in.Fan.SpentTotal,
		"Color":       in.Semaphore.Color,
		"Label":       in.Semaphore.Label,
		"Description": in.Semaphore.Description,
		"Action":      in.Semaphore.Action,
		"Notes":       strings.ReplaceAll(strings.TrimSpace(in.Fan.Notes), "\n", "; "),
		"History":     formatHistory(in.History),
		"Offer":       nil,
	}
	if rec := in.Recommendation; rec != nil {
		offer := &offerVars{
			Title:   rec.Item.Title,
			Session: rec.SessionName,
			Level:   rec.Item.Level,
			Price:   rec.Price,
		}
		if rec.Step != nil {
			offer.Step = *rec.Step
		}
		vars["Offer"] = offer
	}

	msgs, err := p.template.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}
	return msgs, nil
}

func fanName(f *model.Fan) string {
	if f.Name != "" {
		return f.Name
	}
	if f.Username != "" {
		return "@" + f.Username
	}
	return "fan"
}

// formatHistory 构建对话文本
func formatHistory(history []*model.ChatMessage) string {
	if len(history) == 0 {
		return "(no messages yet)"
	}

	var sb strings.Builder
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text)
		if text == "" && !msg.IsPPV {
			continue
		}

		role := "Fan"
		if msg.Sender == model.SenderModel {
			role = "Creator"
		}
		sb.WriteString(fmt.Sprintf("[%s] %s: %s", msg.SentAt.UTC().Format(time.RFC3339), role, text))
		if msg.IsPPV {
			status := "not bought"
			if msg.Purchased {
				status = "bought"
			}
			sb.WriteString(fmt.Sprintf(" [PPV $%.2f, %s]", msg.PPVPrice, status))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
