// Package suggestion 为粉丝生成下一条回复和推荐内容
package suggestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ashwinyue/next-fans/internal/errs"
	fanmodel "github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/repository"
	"github.com/ashwinyue/next-fans/internal/service/catalog"
	"github.com/ashwinyue/next-fans/internal/service/priority"
	"github.com/ashwinyue/next-fans/internal/service/usage"
)

// HistoryLimit 提示词中包含的最近消息数
const HistoryLimit = 30

// Reply 模型返回的 JSON
type Reply struct {
	Message   string `json:"message"`
	Offer     bool   `json:"offer"`
	FanInfo   string `json:"fan_info"`
	Reasoning string `json:"reasoning"`
}

// Suggestion 返回给运营的建议
type Suggestion struct {
	Message        string             `json:"message"`
	Offer          bool               `json:"offer"`
	FanInfo        string             `json:"fan_info,omitempty"`
	Reasoning      string             `json:"reasoning,omitempty"`
	Semaphore      priority.Semaphore `json:"semaphore"`
	Recommendation *Recommendation    `json:"recommendation,omitempty"`
	Quota          *usage.Quota       `json:"quota"`
}

// Service 回复建议服务
type Service struct {
	repo      *repository.Repositories
	limiter   usage.Limiter
	chatModel model.BaseChatModel
	prompt    *Prompt
	logger    *zap.Logger
	now       func() time.Time
}

// NewService 创建建议服务
func NewService(repo *repository.Repositories, limiter usage.Limiter, chatModel model.BaseChatModel, cfg *PromptConfig, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		limiter:   limiter,
		chatModel: chatModel,
		prompt:    NewPrompt(cfg),
		logger:    logger,
		now:       time.Now,
	}
}

// Suggest 生成建议
// 配额在加载数据之后、调用模型之前扣除；模型失败不重试。
func (s *Service) Suggest(ctx context.Context, creatorID, fanID string) (*Suggestion, error) {
	creator, err := s.repo.Creator.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound("creator", err)
	}
	fan, err := s.repo.Fan.GetByID(ctx, creatorID, fanID)
	if err != nil {
		return nil, notFound("fan", err)
	}

	var (
		history   []*fanmodel.ChatMessage
		items     []*fanmodel.CatalogItem
		purchased []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.repo.Message.ListBefore(gctx, fan.ID, nil, HistoryLimit)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.Catalog.ListByCreator(gctx, creatorID)
		return err
	})
	g.Go(func() error {
		var err error
		purchased, err = s.repo.Purchase.ItemIDsByFan(gctx, fan.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load suggestion context: %w", err)
	}

	quota, err := s.limiter.Consume(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	// history 为时间倒序
	var last *fanmodel.ChatMessage
	if len(history) > 0 {
		last = history[0]
	}
	sem := priority.Classify(fan, last, s.now())
	rec := Recommend(fan, sem, catalog.GroupCatalog(items), catalog.NewPurchasedSet(purchased))

	msgs, err := s.prompt.Render(ctx, &PromptInput{
		Creator:        creator,
		Fan:            fan,
		Semaphore:      sem,
		History:        reverse(history),
		Recommendation: rec,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.chatModel.Generate(ctx, msgs)
	if err != nil {
		s.logger.Error("llm call failed",
			zap.String("creator_id", creatorID),
			zap.String("fan_id", fanID),
			zap.Error(err))
		return nil, errs.Upstream("llm call failed", err)
	}

	reply, fail := ParseJSON[Reply](resp.Content)
	if fail == nil && strings.TrimSpace(reply.Message) == "" {
		fail = &ParseFailure{Raw: resp.Content, Err: errors.New("reply has no message")}
	}
	if fail != nil {
		s.logger.Error("llm reply is not valid JSON",
			zap.String("creator_id", creatorID),
			zap.String("fan_id", fanID),
			zap.String("raw", fail.Raw))
		return nil, errs.Upstream(fmt.Sprintf("invalid llm response: %s", fail.Raw), fail)
	}

	if info := strings.TrimSpace(reply.FanInfo); info != "" {
		// 尽力而为，失败不影响返回
		if err := s.repo.Fan.AppendNotes(ctx, fan.ID, info); err != nil {
			s.logger.Warn("failed to save fan info",
				zap.String("fan_id", fan.ID),
				zap.Error(err))
		}
	}

	if rec == nil {
		reply.Offer = false
	}
	return &Suggestion{
		Message:        strings.TrimSpace(reply.Message),
		Offer:          reply.Offer,
		FanInfo:        strings.TrimSpace(reply.FanInfo),
		Reasoning:      reply.Reasoning,
		Semaphore:      sem,
		Recommendation: rec,
		Quota:          quota,
	}, nil
}

// Quota 查询当日配额
func (s *Service) Quota(ctx context.Context, creatorID string) (*usage.Quota, error) {
	return s.limiter.Current(ctx, creatorID)
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(what+" not found", err)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func reverse(msgs []*fanmodel.ChatMessage) []*fanmodel.ChatMessage {
	out := make([]*fanmodel.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}
