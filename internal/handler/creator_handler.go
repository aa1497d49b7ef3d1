package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-fans/internal/middleware"
	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/service/creator"
)

// CreatorHandler 创作者处理器
type CreatorHandler struct {
	creators *creator.Service
}

// NewCreatorHandler 创建创作者处理器
func NewCreatorHandler(creators *creator.Service) *CreatorHandler {
	return &CreatorHandler{creators: creators}
}

// creatorView 返回给前端的创作者，不含凭证
type creatorView struct {
	*model.Creator
	HasCredential bool `json:"has_credential"`
}

func toCreatorView(c *model.Creator) creatorView {
	return creatorView{Creator: c, HasCredential: c.HasCredential()}
}

// Create 创建创作者
// @Summary      创建创作者
// @Tags         创作者
// @Accept       json
// @Produce      json
// @Param        request body creator.CreateRequest true "创作者信息"
// @Success      201 {object} Response
// @Router       /creators [post]
func (h *CreatorHandler) Create(c *gin.Context) {
	var req creator.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	created, err := h.creators.Create(c.Request.Context(), userID, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, toCreatorView(created))
}

// List 列出当前用户的创作者
func (h *CreatorHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	creators, err := h.creators.List(c.Request.Context(), userID)
	if err != nil {
		Error(c, err)
		return
	}

	views := make([]creatorView, 0, len(creators))
	for _, cr := range creators {
		views = append(views, toCreatorView(cr))
	}
	Success(c, views)
}

// Get 获取创作者
func (h *CreatorHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	cr, err := h.creators.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, toCreatorView(cr))
}

// SetCredential 保存平台凭证
func (h *CreatorHandler) SetCredential(c *gin.Context) {
	var req creator.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.creators.SetCredential(c.Request.Context(), userID, c.Param("id"), req.Credential); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}
