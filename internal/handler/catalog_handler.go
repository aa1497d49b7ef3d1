package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-fans/internal/middleware"
	"github.com/ashwinyue/next-fans/internal/service/catalog"
)

// maxUploadSize 单个媒体上传上限
const maxUploadSize = 512 << 20

// CatalogHandler 内容目录处理器
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(catalogSvc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalogSvc}
}

// List 目录全貌：会话、单品、收件箱
func (h *CatalogHandler) List(c *gin.Context) {
	view, err := h.catalog.List(c.Request.Context(), middleware.GetCreatorID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, view)
}

// UploadMedia 上传媒体，新内容进入收件箱
// @Summary      上传媒体
// @Tags         内容目录
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true  "创作者ID"
// @Param        file  formData file   true  "媒体文件"
// @Param        title formData string false "标题"
// @Success      201 {object} Response
// @Router       /creators/{id}/catalog/media [post]
func (h *CatalogHandler) UploadMedia(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required: "+err.Error())
		return
	}
	if fileHeader.Size > maxUploadSize {
		BadRequest(c, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		Error(c, err)
		return
	}
	defer f.Close()

	item, err := h.catalog.ImportMedia(c.Request.Context(), middleware.GetCreatorID(c), &catalog.MediaUpload{
		Title:       c.PostForm("title"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      f,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, item)
}

// UpdateItem 修改内容标题、价格、尺度或关键词
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	var req catalog.ItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	item, err := h.catalog.UpdateItem(c.Request.Context(), middleware.GetCreatorID(c), c.Param("item_id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, item)
}

// CreateSession 创建会话
func (h *CatalogHandler) CreateSession(c *gin.Context) {
	var req catalog.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	session, err := h.catalog.CreateSession(c.Request.Context(), middleware.GetCreatorID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, session)
}

// UpdateSession 替换会话分集
func (h *CatalogHandler) UpdateSession(c *gin.Context) {
	var req catalog.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	session, err := h.catalog.UpdateSession(c.Request.Context(), middleware.GetCreatorID(c), c.Param("session_id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, session)
}

// DeleteSession 解散会话，分集回到收件箱
func (h *CatalogHandler) DeleteSession(c *gin.Context) {
	if err := h.catalog.DeleteSession(c.Request.Context(), middleware.GetCreatorID(c), c.Param("session_id")); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// MarkSingle 标记为单品
func (h *CatalogHandler) MarkSingle(c *gin.Context) {
	item, err := h.catalog.MarkSingle(c.Request.Context(), middleware.GetCreatorID(c), c.Param("item_id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, item)
}

// UnmarkSingle 取消单品
func (h *CatalogHandler) UnmarkSingle(c *gin.Context) {
	item, err := h.catalog.UnmarkSingle(c.Request.Context(), middleware.GetCreatorID(c), c.Param("item_id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, item)
}
