package galleries

import (
	"context"
	"errors"

	"github.com/anoixa/art-gallery/database/models"
	artworksrepo "github.com/anoixa/art-gallery/database/repo/artworks"
	galleriesrepo "github.com/anoixa/art-gallery/database/repo/galleries"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 画廊不存在
	ErrNotFound = errors.New("gallery not found")

	// ErrNotOwner 只能操作自己的画廊
	ErrNotOwner = errors.New("you can only modify your own galleries")

	// ErrAccessDenied 画廊未发布，访问者无权查看
	ErrAccessDenied = errors.New("access denied, gallery is not published")

	// ErrEmptyGallery 空画廊不能发布
	ErrEmptyGallery = errors.New("cannot publish empty gallery, add artworks first")

	// ErrArtworkNotFound 作品不存在
	ErrArtworkNotFound = errors.New("artwork not found")

	// ErrArtworkNotApproved 只有通过审核的作品才能加入画廊
	ErrArtworkNotApproved = errors.New("only approved artworks can be added to galleries")

	// ErrAlreadyMember 作品已在画廊中
	ErrAlreadyMember = errors.New("artwork is already in this gallery")

	// ErrNotMember 作品不在画廊中
	ErrNotMember = errors.New("artwork is not in this gallery")
)

// Service 画廊服务
type Service struct {
	galleriesRepo *galleriesrepo.Repository
	artworksRepo  *artworksrepo.Repository
}

// NewService 创建画廊服务
func NewService(galleriesRepo *galleriesrepo.Repository, artworksRepo *artworksrepo.Repository) *Service {
	return &Service{
		galleriesRepo: galleriesRepo,
		artworksRepo:  artworksRepo,
	}
}

// Actor 操作者身份
type Actor struct {
	UserID uint
	Role   models.UserRole
}

// isAdmin 管理员视角
func (a Actor) isAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Create 创建画廊，初始为未发布状态
func (s *Service) Create(ctx context.Context, curatorID uint, name, description string) (*models.Gallery, error) {
	gallery := &models.Gallery{
		Name:        name,
		Description: description,
		CuratorID:   curatorID,
	}
	if err := s.galleriesRepo.WithContext(ctx).Create(gallery); err != nil {
		return nil, err
	}
	return s.galleriesRepo.WithContext(ctx).GetByID(gallery.ID)
}

// Detail 画廊详情，成员按显示顺序排列
type Detail struct {
	Gallery *models.Gallery
	Members []*galleriesrepo.Member
}

// Get 获取画廊详情并累加浏览计数
// 未发布的画廊只有所属策展人和管理员可见；每次成功读取都计数，
// 包括策展人查看自己的草稿。
func (s *Service) Get(ctx context.Context, id uint, viewer Actor) (*Detail, error) {
	repo := s.galleriesRepo.WithContext(ctx)

	gallery, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !gallery.IsPublished && gallery.CuratorID != viewer.UserID && !viewer.isAdmin() {
		return nil, ErrAccessDenied
	}

	if err := repo.IncrementViewCount(id); err != nil {
		return nil, err
	}
	gallery.ViewCount++

	members, err := repo.GetMembers(id)
	if err != nil {
		return nil, err
	}

	return &Detail{Gallery: gallery, Members: members}, nil
}

// Filters 列表查询条件
type Filters = galleriesrepo.Filters

// List 分页获取已发布画廊，支持按策展人、标签和关键词过滤
func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*galleriesrepo.GalleryInfo, int64, error) {
	return s.galleriesRepo.WithContext(ctx).List(f, limit, offset)
}

// ListMine 获取策展人自己的全部画廊，含未发布
func (s *Service) ListMine(ctx context.Context, curatorID uint, limit, offset int) ([]*galleriesrepo.GalleryInfo, int64, error) {
	return s.galleriesRepo.WithContext(ctx).ListByCurator(curatorID, limit, offset)
}

// MemberCount 获取画廊成员数量
func (s *Service) MemberCount(ctx context.Context, id uint) (int64, error) {
	return s.galleriesRepo.WithContext(ctx).MemberCount(id)
}

// getOwned 获取画廊并校验归属
func (s *Service) getOwned(ctx context.Context, id uint, actor Actor) (*models.Gallery, error) {
	gallery, err := s.galleriesRepo.WithContext(ctx).GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if gallery.CuratorID != actor.UserID && !actor.isAdmin() {
		return nil, ErrNotOwner
	}

	return gallery, nil
}

// UpdateInput 画廊编辑参数，nil 字段不修改
type UpdateInput struct {
	Name        *string
	Description *string
}

// Update 编辑画廊信息
func (s *Service) Update(ctx context.Context, id uint, actor Actor, input UpdateInput) (*models.Gallery, error) {
	gallery, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		gallery.Name = *input.Name
	}
	if input.Description != nil {
		gallery.Description = *input.Description
	}

	if err := s.galleriesRepo.WithContext(ctx).Update(gallery); err != nil {
		return nil, err
	}
	return gallery, nil
}

// Publish 发布画廊，空画廊拒绝发布
func (s *Service) Publish(ctx context.Context, id uint, actor Actor) (*models.Gallery, error) {
	gallery, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	count, err := s.galleriesRepo.WithContext(ctx).MemberCount(id)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrEmptyGallery
	}

	gallery.IsPublished = true
	if err := s.galleriesRepo.WithContext(ctx).Update(gallery); err != nil {
		return nil, err
	}
	return gallery, nil
}

// Unpublish 撤回画廊，成员与顺序保持不变
func (s *Service) Unpublish(ctx context.Context, id uint, actor Actor) (*models.Gallery, error) {
	gallery, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	gallery.IsPublished = false
	if err := s.galleriesRepo.WithContext(ctx).Update(gallery); err != nil {
		return nil, err
	}
	return gallery, nil
}

// Delete 删除画廊及其成员关联，作品本身不受影响
func (s *Service) Delete(ctx context.Context, id uint, actor Actor) error {
	if _, err := s.getOwned(ctx, id, actor); err != nil {
		return err
	}
	return s.galleriesRepo.WithContext(ctx).Delete(id)
}

// AddArtwork 把作品加入画廊
// 只接受已通过审核的作品，重复加入报错。未指定顺序时追加到末尾。
func (s *Service) AddArtwork(ctx context.Context, galleryID, artworkID uint, actor Actor, order *int) error {
	if _, err := s.getOwned(ctx, galleryID, actor); err != nil {
		return err
	}

	artwork, err := s.artworksRepo.WithContext(ctx).GetByID(artworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArtworkNotFound
		}
		return err
	}
	if artwork.Status != models.ArtworkStatusApproved {
		return ErrArtworkNotApproved
	}

	if err := s.galleriesRepo.WithContext(ctx).AddMember(galleryID, artworkID, order); err != nil {
		if errors.Is(err, galleriesrepo.ErrAlreadyMember) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

// RemoveArtwork 从画廊移除作品，剩余顺序保留空洞
func (s *Service) RemoveArtwork(ctx context.Context, galleryID, artworkID uint, actor Actor) error {
	if _, err := s.getOwned(ctx, galleryID, actor); err != nil {
		return err
	}

	removed, err := s.galleriesRepo.WithContext(ctx).RemoveMember(galleryID, artworkID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotMember
	}
	return nil
}

// OrderEntry 顺序更新条目
type OrderEntry = galleriesrepo.OrderEntry

// Reorder 批量更新成员顺序，不在画廊中的条目被忽略
func (s *Service) Reorder(ctx context.Context, galleryID uint, actor Actor, entries []OrderEntry) error {
	if _, err := s.getOwned(ctx, galleryID, actor); err != nil {
		return err
	}
	return s.galleriesRepo.WithContext(ctx).UpdateOrder(galleryID, entries)
}
