package curator

import (
	"net/http"

	"github.com/anoixa/art-gallery/api/common"
	handlerArtworks "github.com/anoixa/art-gallery/api/handler/artworks"
	"github.com/anoixa/art-gallery/api/middleware"
	"github.com/anoixa/art-gallery/database/models"
	artworkssvc "github.com/anoixa/art-gallery/internal/services/artworks"
	tagssvc "github.com/anoixa/art-gallery/internal/services/tags"
	"github.com/gin-gonic/gin"
)

// Handler 策展工作台处理器
type Handler struct {
	artworksService *artworkssvc.Service
	tagsService     *tagssvc.Service
}

// NewHandler 创建策展处理器
func NewHandler(artworksService *artworkssvc.Service, tagsService *tagssvc.Service) *Handler {
	return &Handler{
		artworksService: artworksService,
		tagsService:     tagsService,
	}
}

// PendingQueue 待审核队列，最早提交的在前
func (h *Handler) PendingQueue(c *gin.Context) {
	limit, offset := common.ParsePagination(c)

	artworks, total, err := h.artworksService.PendingQueue(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load pending queue")
		return
	}

	common.RespondSuccess(c, gin.H{
		"artworks":   handlerArtworks.NewArtworkDTOs(artworks),
		"pagination": common.NewPagination(total, limit, offset),
	})
}

type reviewRequest struct {
	Status   string   `json:"status" binding:"required"`
	Feedback string   `json:"feedback" binding:"max=2000"`
	Tags     []string `json:"tags"`
}

// Review 审核作品
func (h *Handler) Review(c *gin.Context) {
	id, ok := handlerArtworks.ParseID(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	curatorID := c.GetUint(middleware.ContextUserIDKey)
	artwork, err := h.artworksService.Review(c.Request.Context(), id, curatorID, artworkssvc.ReviewInput{
		Status:   models.ArtworkStatus(req.Status),
		Feedback: req.Feedback,
		Tags:     req.Tags,
	})
	if err != nil {
		handlerArtworks.RespondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Review recorded", handlerArtworks.NewArtworkDTO(artwork))
}

// History 当前策展人的审核历史
func (h *Handler) History(c *gin.Context) {
	limit, offset := common.ParsePagination(c)
	curatorID := c.GetUint(middleware.ContextUserIDKey)

	artworks, total, err := h.artworksService.ReviewHistory(c.Request.Context(), curatorID, limit, offset)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load review history")
		return
	}

	common.RespondSuccess(c, gin.H{
		"artworks":   handlerArtworks.NewArtworkDTOs(artworks),
		"pagination": common.NewPagination(total, limit, offset),
	})
}

// Tags 全部标签，按名称排序
func (h *Handler) Tags(c *gin.Context) {
	tags, err := h.tagsService.ListAll()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load tags")
		return
	}

	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	common.RespondSuccess(c, gin.H{"tags": names})
}
