package handler

import (
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	filesvc "github.com/ashwinyue/next-fans/internal/service/file"
)

// MediaHandler 本地存储的媒体访问
type MediaHandler struct {
	fileSvc *filesvc.Service
}

// NewMediaHandler 创建媒体处理器
func NewMediaHandler(fileSvc *filesvc.Service) *MediaHandler {
	return &MediaHandler{fileSvc: fileSvc}
}

// Serve 输出媒体内容，key 取自通配路径
func (h *MediaHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		NotFound(c, "media not found")
		return
	}

	reader, err := h.fileSvc.Open(c.Request.Context(), key)
	if err != nil {
		Error(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=3600")

	if _, err := io.Copy(c.Writer, reader); err != nil {
		_ = c.Error(err)
	}
}
