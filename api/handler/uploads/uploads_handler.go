package uploads

import (
	"errors"
	"log"
	"net/http"

	"github.com/anoixa/art-gallery/api/common"
	artworkssvc "github.com/anoixa/art-gallery/internal/services/artworks"
	"github.com/anoixa/art-gallery/storage"
	"github.com/anoixa/art-gallery/utils/mime"
	"github.com/gin-gonic/gin"
)

// Handler 图片访问处理器
type Handler struct {
	svc *artworkssvc.Service
}

// NewHandler 创建图片访问处理器
func NewHandler(svc *artworkssvc.Service) *Handler {
	return &Handler{svc: svc}
}

// GetImage 按存储标识返回图片字节流
func (h *Handler) GetImage(c *gin.Context) {
	identifier := c.Param("identifier")
	if !storage.IsValidIdentifier(identifier) {
		common.RespondError(c, http.StatusBadRequest, "Invalid identifier")
		return
	}

	artwork, err := h.svc.GetByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		if errors.Is(err, artworkssvc.ErrNotFound) {
			common.RespondError(c, http.StatusNotFound, "Image not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to load image")
		return
	}

	stream, err := h.svc.OpenImage(c.Request.Context(), identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			common.RespondError(c, http.StatusNotFound, "Image not found")
			return
		}
		log.Printf("Failed to open stored object %s: %v", identifier, err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to load image")
		return
	}
	defer func() { _ = stream.Close() }()

	contentType, err := mime.SniffContentType(stream)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to read image")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(c.Writer, c.Request, identifier, artwork.UpdatedAt, stream)
}
