package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-fans/internal/middleware"
	"github.com/ashwinyue/next-fans/internal/service/fan"
)

// FanHandler 粉丝处理器
type FanHandler struct {
	fans   *fan.Service
	sender *fan.Sender
}

// NewFanHandler 创建粉丝处理器
func NewFanHandler(fans *fan.Service, sender *fan.Sender) *FanHandler {
	return &FanHandler{fans: fans, sender: sender}
}

// List 按紧急程度排序的粉丝列表
// @Summary      粉丝列表
// @Description  按信号灯优先级从高到低排序
// @Tags         粉丝
// @Produce      json
// @Param        id path string true "创作者ID"
// @Success      200 {object} Response
// @Router       /creators/{id}/fans [get]
func (h *FanHandler) List(c *gin.Context) {
	ranked, err := h.fans.ListRanked(c.Request.Context(), middleware.GetCreatorID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, ranked)
}

// Get 获取粉丝
func (h *FanHandler) Get(c *gin.Context) {
	f, err := h.fans.Get(c.Request.Context(), middleware.GetCreatorID(c), c.Param("fan_id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, f)
}

// Update 修改粉丝
func (h *FanHandler) Update(c *gin.Context) {
	var req fan.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	f, err := h.fans.Update(c.Request.Context(), middleware.GetCreatorID(c), c.Param("fan_id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, f)
}

// Messages 聊天记录，before 为 RFC3339 时间
func (h *FanHandler) Messages(c *gin.Context) {
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			BadRequest(c, "before must be an RFC3339 timestamp")
			return
		}
		before = &t
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	msgs, err := h.fans.History(c.Request.Context(), middleware.GetCreatorID(c), c.Param("fan_id"), before, limit)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, msgs)
}

// Send 给粉丝发送消息
func (h *FanHandler) Send(c *gin.Context) {
	var req fan.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	msg, err := h.sender.Send(c.Request.Context(), middleware.GetCreatorID(c), c.Param("fan_id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, msg)
}

// RecordPurchase 手动记录购买
func (h *FanHandler) RecordPurchase(c *gin.Context) {
	var req fan.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	p, err := h.fans.RecordPurchase(c.Request.Context(), middleware.GetCreatorID(c), c.Param("fan_id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, p)
}
