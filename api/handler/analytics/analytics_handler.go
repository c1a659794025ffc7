package analytics

import (
	"log"
	"net/http"

	"github.com/anoixa/art-gallery/api/common"
	"github.com/anoixa/art-gallery/api/middleware"
	analyticssvc "github.com/anoixa/art-gallery/internal/services/analytics"
	"github.com/gin-gonic/gin"
)

// Handler 统计处理器
type Handler struct {
	svc *analyticssvc.Service
}

// NewHandler 创建统计处理器
func NewHandler(svc *analyticssvc.Service) *Handler {
	return &Handler{svc: svc}
}

// SiteStats 全站统计，公开访问，结果有短暂缓存
func (h *Handler) SiteStats(c *gin.Context) {
	stats, err := h.svc.GetSiteStats(c.Request.Context())
	if err != nil {
		log.Printf("Failed to compute site stats: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to load site statistics")
		return
	}
	common.RespondSuccess(c, stats)
}

// ArtistStats 当前艺术家的统计
func (h *Handler) ArtistStats(c *gin.Context) {
	artistID := c.GetUint(middleware.ContextUserIDKey)

	stats, err := h.svc.GetArtistStats(c.Request.Context(), artistID)
	if err != nil {
		log.Printf("Failed to compute artist stats for %d: %v", artistID, err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to load artist statistics")
		return
	}
	common.RespondSuccess(c, stats)
}

// CuratorStats 当前策展人的统计
func (h *Handler) CuratorStats(c *gin.Context) {
	curatorID := c.GetUint(middleware.ContextUserIDKey)

	stats, err := h.svc.GetCuratorStats(c.Request.Context(), curatorID)
	if err != nil {
		log.Printf("Failed to compute curator stats for %d: %v", curatorID, err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to load curator statistics")
		return
	}
	common.RespondSuccess(c, stats)
}
