package artworks

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/anoixa/art-gallery/api/common"
	"github.com/anoixa/art-gallery/api/middleware"
	"github.com/anoixa/art-gallery/config"
	"github.com/anoixa/art-gallery/database/models"
	artworkssvc "github.com/anoixa/art-gallery/internal/services/artworks"
	"github.com/gin-gonic/gin"
)

// Handler 作品处理器
type Handler struct {
	svc *artworkssvc.Service
}

// NewHandler 创建作品处理器
func NewHandler(svc *artworkssvc.Service) *Handler {
	return &Handler{svc: svc}
}

// viewerFromContext 从 gin context 读取访问者身份，匿名时为零值
func viewerFromContext(c *gin.Context) artworkssvc.Viewer {
	return artworkssvc.Viewer{
		UserID: c.GetUint(middleware.ContextUserIDKey),
		Role:   models.UserRole(c.GetString(middleware.ContextRoleKey)),
	}
}

// ParseID 解析路径中的数字 ID
func ParseID(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return uint(value), true
}

// RespondServiceError 把服务层错误映射为 HTTP 状态
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, artworkssvc.ErrNotFound):
		common.RespondError(c, http.StatusNotFound, "Artwork not found")
	case errors.Is(err, artworkssvc.ErrAccessDenied):
		common.RespondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, artworkssvc.ErrNotOwner):
		common.RespondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, artworkssvc.ErrNotPending):
		common.RespondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, artworkssvc.ErrAlreadyReviewed):
		common.RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, artworkssvc.ErrInvalidReviewStatus),
		errors.Is(err, artworkssvc.ErrInvalidImage),
		errors.Is(err, artworkssvc.ErrImageTooLarge),
		errors.Is(err, artworkssvc.ErrNoFields):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Artwork operation failed: %v", err)
		detail := ""
		if config.IsDevelopment() {
			detail = err.Error()
		}
		common.RespondErrorDetail(c, http.StatusInternalServerError, "Internal server error", detail)
	}
}

// ListArtworks 分页获取作品列表
func (h *Handler) ListArtworks(c *gin.Context) {
	limit, offset := common.ParsePagination(c)

	filters := artworkssvc.Filters{
		Status: models.ArtworkStatus(c.Query("status")),
		Tag:    c.Query("tag"),
		Medium: c.Query("medium"),
		Search: c.Query("search"),
	}
	if artistID, err := strconv.ParseUint(c.Query("artist_id"), 10, 32); err == nil {
		filters.ArtistID = uint(artistID)
	}

	artworks, total, err := h.svc.List(c.Request.Context(), filters, viewerFromContext(c), limit, offset)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"artworks":   NewArtworkDTOs(artworks),
		"pagination": common.NewPagination(total, limit, offset),
	})
}

// GetArtwork 获取单件作品详情
func (h *Handler) GetArtwork(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	artwork, err := h.svc.Get(c.Request.Context(), id, viewerFromContext(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, NewArtworkDTO(artwork))
}

type submitArtworkForm struct {
	Title       string `form:"title" binding:"required,max=100"`
	Description string `form:"description" binding:"max=2000"`
	Medium      string `form:"medium" binding:"required,max=50"`
	Dimensions  string `form:"dimensions" binding:"max=50"`
}

// SubmitArtwork 提交新作品，multipart 表单加图片文件
func (h *Handler) SubmitArtwork(c *gin.Context) {
	var form submitArtworkForm
	if err := c.ShouldBind(&form); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Image file is required")
		return
	}

	artistID := c.GetUint(middleware.ContextUserIDKey)
	artwork, err := h.svc.Submit(c.Request.Context(), artistID, artworkssvc.SubmitInput{
		Title:       form.Title,
		Description: form.Description,
		Medium:      form.Medium,
		Dimensions:  form.Dimensions,
		File:        file,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	common.RespondCreated(c, "Artwork submitted for review", NewArtworkDTO(artwork))
}

type updateArtworkForm struct {
	Title       *string `form:"title" binding:"omitempty,max=100"`
	Description *string `form:"description" binding:"omitempty,max=2000"`
	Medium      *string `form:"medium" binding:"omitempty,max=50"`
	Dimensions  *string `form:"dimensions" binding:"omitempty,max=50"`
}

// UpdateArtwork 编辑作品，可附带替换图片
func (h *Handler) UpdateArtwork(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var form updateArtworkForm
	if err := c.ShouldBind(&form); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// 图片可选
	var file *multipart.FileHeader
	if f, err := c.FormFile("image"); err == nil {
		file = f
	}

	artwork, err := h.svc.Update(c.Request.Context(), id, viewerFromContext(c), artworkssvc.UpdateInput{
		Title:       form.Title,
		Description: form.Description,
		Medium:      form.Medium,
		Dimensions:  form.Dimensions,
		File:        file,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork updated", NewArtworkDTO(artwork))
}

// DeleteArtwork 删除作品
func (h *Handler) DeleteArtwork(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, viewerFromContext(c)); err != nil {
		RespondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork deleted", nil)
}

// LikeArtwork 点赞，无需登录
func (h *Handler) LikeArtwork(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Like(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork liked", nil)
}
