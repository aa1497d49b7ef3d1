package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-fans/internal/service/fan"
)

// WebhookHandler 平台推送处理器
type WebhookHandler struct {
	fans *fan.Service
}

// NewWebhookHandler 创建 webhook 处理器
func NewWebhookHandler(fans *fan.Service) *WebhookHandler {
	return &WebhookHandler{fans: fans}
}

// Message 接收平台消息，重复推送返回 200 且 duplicate 为 true
func (h *WebhookHandler) Message(c *gin.Context) {
	var in fan.InboundMessage
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	res, err := h.fans.IngestMessage(c.Request.Context(), &in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, res)
}
