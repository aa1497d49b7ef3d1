package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-fans/internal/middleware"
	"github.com/ashwinyue/next-fans/internal/service/suggestion"
)

// SuggestionHandler AI 回复建议处理器
type SuggestionHandler struct {
	suggestions *suggestion.Service
}

// NewSuggestionHandler 创建建议处理器
func NewSuggestionHandler(suggestions *suggestion.Service) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

// Suggest 为粉丝生成下一条消息建议，每次调用消耗一次配额
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	s, err := h.suggestions.Suggest(c.Request.Context(), middleware.GetCreatorID(c), c.Param("fan_id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, s)
}

// Quota 当日 AI 配额
func (h *SuggestionHandler) Quota(c *gin.Context) {
	q, err := h.suggestions.Quota(c.Request.Context(), middleware.GetCreatorID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, q)
}
