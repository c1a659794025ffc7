package galleries

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/anoixa/art-gallery/api/common"
	handlerArtworks "github.com/anoixa/art-gallery/api/handler/artworks"
	"github.com/anoixa/art-gallery/api/middleware"
	"github.com/anoixa/art-gallery/config"
	"github.com/anoixa/art-gallery/database/models"
	galleriesrepo "github.com/anoixa/art-gallery/database/repo/galleries"
	galleriessvc "github.com/anoixa/art-gallery/internal/services/galleries"
	"github.com/gin-gonic/gin"
)

// Handler 画廊处理器
type Handler struct {
	svc *galleriessvc.Service
}

// NewHandler 创建画廊处理器
func NewHandler(svc *galleriessvc.Service) *Handler {
	return &Handler{svc: svc}
}

// CuratorDTO 画廊上附带的策展人信息
type CuratorDTO struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// GalleryDTO 对外暴露的画廊信息
type GalleryDTO struct {
	ID           uint        `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	IsPublished  bool        `json:"is_published"`
	ViewCount    int64       `json:"view_count"`
	ArtworkCount int64       `json:"artwork_count"`
	Curator      *CuratorDTO `json:"curator,omitempty"`
	CreatedAt    int64       `json:"created_at"`
	UpdatedAt    int64       `json:"updated_at"`
}

// MemberDTO 画廊成员作品及显示顺序
type MemberDTO struct {
	Artwork      *handlerArtworks.ArtworkDTO `json:"artwork"`
	DisplayOrder int                         `json:"display_order"`
}

// GalleryDetailDTO 画廊详情，成员按显示顺序排列
type GalleryDetailDTO struct {
	GalleryDTO
	Artworks []*MemberDTO `json:"artworks"`
}

// newGalleryDTO 从模型构造画廊 DTO
func newGalleryDTO(gallery *models.Gallery, artworkCount int64) GalleryDTO {
	dto := GalleryDTO{
		ID:           gallery.ID,
		Name:         gallery.Name,
		Description:  gallery.Description,
		IsPublished:  gallery.IsPublished,
		ViewCount:    gallery.ViewCount,
		ArtworkCount: artworkCount,
		CreatedAt:    gallery.CreatedAt.Unix(),
		UpdatedAt:    gallery.UpdatedAt.Unix(),
	}
	if gallery.Curator.ID != 0 {
		dto.Curator = &CuratorDTO{
			ID:           gallery.Curator.ID,
			Username:     gallery.Curator.Username,
			ProfileImage: gallery.Curator.ProfileImage,
		}
	}
	return dto
}

// newGalleryDTOs 从列表结果批量构造 DTO
func newGalleryDTOs(infos []*galleriesrepo.GalleryInfo) []GalleryDTO {
	result := make([]GalleryDTO, len(infos))
	for i, info := range infos {
		result[i] = newGalleryDTO(info.Gallery, info.ArtworkCount)
	}
	return result
}

// actorFromContext 从 gin context 读取操作者身份
func actorFromContext(c *gin.Context) galleriessvc.Actor {
	return galleriessvc.Actor{
		UserID: c.GetUint(middleware.ContextUserIDKey),
		Role:   models.UserRole(c.GetString(middleware.ContextRoleKey)),
	}
}

// respondServiceError 把画廊服务错误映射为 HTTP 状态
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, galleriessvc.ErrNotFound):
		common.RespondError(c, http.StatusNotFound, "Gallery not found")
	case errors.Is(err, galleriessvc.ErrArtworkNotFound):
		common.RespondError(c, http.StatusNotFound, "Artwork not found")
	case errors.Is(err, galleriessvc.ErrNotOwner), errors.Is(err, galleriessvc.ErrAccessDenied):
		common.RespondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, galleriessvc.ErrAlreadyMember):
		common.RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, galleriessvc.ErrEmptyGallery),
		errors.Is(err, galleriessvc.ErrArtworkNotApproved),
		errors.Is(err, galleriessvc.ErrNotMember):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Gallery operation failed: %v", err)
		detail := ""
		if config.IsDevelopment() {
			detail = err.Error()
		}
		common.RespondErrorDetail(c, http.StatusInternalServerError, "Internal server error", detail)
	}
}

// ListGalleries 分页获取已发布画廊
func (h *Handler) ListGalleries(c *gin.Context) {
	limit, offset := common.ParsePagination(c)

	filters := galleriessvc.Filters{
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
	}
	if curatorID, err := strconv.ParseUint(c.Query("curator_id"), 10, 32); err == nil {
		filters.CuratorID = uint(curatorID)
	}

	infos, total, err := h.svc.List(c.Request.Context(), filters, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"galleries":  newGalleryDTOs(infos),
		"pagination": common.NewPagination(total, limit, offset),
	})
}

// ListOwnGalleries 当前策展人的全部画廊，含未发布
func (h *Handler) ListOwnGalleries(c *gin.Context) {
	limit, offset := common.ParsePagination(c)
	curatorID := c.GetUint(middleware.ContextUserIDKey)

	infos, total, err := h.svc.ListMine(c.Request.Context(), curatorID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"galleries":  newGalleryDTOs(infos),
		"pagination": common.NewPagination(total, limit, offset),
	})
}

// GetGallery 获取画廊详情
func (h *Handler) GetGallery(c *gin.Context) {
	id, ok := handlerArtworks.ParseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), id, actorFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	members := make([]*MemberDTO, len(detail.Members))
	for i, member := range detail.Members {
		members[i] = &MemberDTO{
			Artwork:      handlerArtworks.NewArtworkDTO(member.Artwork),
			DisplayOrder: member.DisplayOrder,
		}
	}

	common.RespondSuccess(c, GalleryDetailDTO{
		GalleryDTO: newGalleryDTO(detail.Gallery, int64(len(members))),
		Artworks:   members,
	})
}

type createGalleryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// CreateGallery 创建画廊，初始为未发布状态
func (h *Handler) CreateGallery(c *gin.Context) {
	var req createGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	curatorID := c.GetUint(middleware.ContextUserIDKey)
	gallery, err := h.svc.Create(c.Request.Context(), curatorID, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondCreated(c, "Gallery created", newGalleryDTO(gallery, 0))
}

type updateGalleryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsPublished *bool   `json:"is_published"`
}

// UpdateGallery 编辑画廊，发布状态通过 is_published 切换
func (h *Handler) UpdateGallery(c *gin.Context) {
	id, ok := handlerArtworks.ParseID(c, "id")
	if !ok {
		return
	}

	var req updateGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == nil && req.Description == nil && req.IsPublished == nil {
		common.RespondError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	actor := actorFromContext(c)
	ctx := c.Request.Context()

	gallery, err := h.svc.Update(ctx, id, actor, galleriessvc.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 空画廊发布会被拒绝
	if req.IsPublished != nil && *req.IsPublished != gallery.IsPublished {
		if *req.IsPublished {
			gallery, err = h.svc.Publish(ctx, id, actor)
		} else {
			gallery, err = h.svc.Unpublish(ctx, id, actor)
		}
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}

	count, err := h.svc.MemberCount(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Gallery updated", newGalleryDTO(gallery, count))
}

// DeleteGallery 删除画廊，作品本身不受影响
func (h *Handler) DeleteGallery(c *gin.Context) {
	id, ok := handlerArtworks.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, actorFromContext(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Gallery deleted", nil)
}

type addArtworkRequest struct {
	ArtworkID    uint `json:"artwork_id" binding:"required"`
	DisplayOrder *int `json:"display_order"`
}

// AddArtwork 把作品加入画廊，未指定顺序时追加到末尾
func (h *Handler) AddArtwork(c *gin.Context) {
	id, ok := handlerArtworks.ParseID(c, "id")
	if !ok {
		return
	}

	var req addArtworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.AddArtwork(c.Request.Context(), id, req.ArtworkID, actorFromContext(c), req.DisplayOrder); err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork added to gallery", nil)
}

// RemoveArtwork 从画廊移除作品
func (h *Handler) RemoveArtwork(c *gin.Context) {
	id, ok := handlerArtworks.ParseID(c, "id")
	if !ok {
		return
	}
	artworkID, ok := handlerArtworks.ParseID(c, "artwork_id")
	if !ok {
		return
	}

	if err := h.svc.RemoveArtwork(c.Request.Context(), id, artworkID, actorFromContext(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork removed from gallery", nil)
}

type reorderRequest struct {
	ArtworkOrders []struct {
		ArtworkID    *uint `json:"artwork_id"`
		DisplayOrder *int  `json:"display_order"`
	} `json:"artwork_orders" binding:"required,min=1"`
}

// ReorderArtworks 批量更新成员显示顺序
// 缺少字段的条目被静默跳过，不影响其余条目。
func (h *Handler) ReorderArtworks(c *gin.Context) {
	id, ok := handlerArtworks.ParseID(c, "id")
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries := make([]galleriessvc.OrderEntry, 0, len(req.ArtworkOrders))
	for _, pair := range req.ArtworkOrders {
		if pair.ArtworkID == nil || pair.DisplayOrder == nil {
			continue
		}
		entries = append(entries, galleriessvc.OrderEntry{
			ArtworkID:    *pair.ArtworkID,
			DisplayOrder: *pair.DisplayOrder,
		})
	}

	if err := h.svc.Reorder(c.Request.Context(), id, actorFromContext(c), entries); err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Gallery order updated", nil)
}
