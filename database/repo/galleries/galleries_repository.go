package galleries

import (
	"context"
	"errors"

	"github.com/anoixa/art-gallery/database/models"
	"gorm.io/gorm"
)

// ErrAlreadyMember 作品已在画廊中
var ErrAlreadyMember = errors.New("artwork already in gallery")

// Repository 画廊仓库 - 封装所有画廊相关的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的画廊仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GalleryInfo 画廊及其成员数量
type GalleryInfo struct {
	Gallery      *models.Gallery
	ArtworkCount int64
}

// Member 画廊成员作品及显示顺序
type Member struct {
	Artwork      *models.Artwork
	DisplayOrder int
}

// Create 创建画廊
func (r *Repository) Create(gallery *models.Gallery) error {
	return r.db.Create(gallery).Error
}

// GetByID 通过ID获取画廊
func (r *Repository) GetByID(id uint) (*models.Gallery, error) {
	var gallery models.Gallery
	err := r.db.Preload("Curator").First(&gallery, id).Error
	if err != nil {
		return nil, err
	}
	return &gallery, nil
}

// GetMembers 按显示顺序获取画廊成员作品
func (r *Repository) GetMembers(galleryID uint) ([]*Member, error) {
	var links []models.GalleryArtwork
	err := r.db.Where("gallery_id = ?", galleryID).
		Order("display_order ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []*Member{}, nil
	}

	artworkIDs := make([]uint, len(links))
	for i, link := range links {
		artworkIDs[i] = link.ArtworkID
	}

	var artworks []*models.Artwork
	err = r.db.Preload("Artist").Preload("Tags").
		Where("id IN ?", artworkIDs).
		Find(&artworks).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Artwork, len(artworks))
	for _, artwork := range artworks {
		byID[artwork.ID] = artwork
	}

	members := make([]*Member, 0, len(links))
	for _, link := range links {
		artwork, ok := byID[link.ArtworkID]
		if !ok {
			continue
		}
		members = append(members, &Member{Artwork: artwork, DisplayOrder: link.DisplayOrder})
	}

	return members, nil
}

// Filters 画廊列表查询条件
type Filters struct {
	CuratorID uint
	Tag       string
	Search    string
}

// applyFilters 在已发布画廊上叠加查询条件
func (r *Repository) applyFilters(db *gorm.DB, f Filters) *gorm.DB {
	db = db.Where("galleries.is_published = ?", true)

	if f.CuratorID != 0 {
		db = db.Where("galleries.curator_id = ?", f.CuratorID)
	}

	if f.Tag != "" {
		// 至少有一个成员作品带此标签
		sub := r.db.Table("gallery_artworks").
			Select("gallery_artworks.gallery_id").
			Joins("JOIN artwork_tags ON artwork_tags.artwork_id = gallery_artworks.artwork_id").
			Joins("JOIN tags ON tags.id = artwork_tags.tag_id").
			Where("tags.name = ?", f.Tag)
		db = db.Where("galleries.id IN (?)", sub)
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		db = db.Joins("JOIN users ON users.id = galleries.curator_id").
			Where("galleries.name LIKE ? OR galleries.description LIKE ? OR users.username LIKE ?",
				pattern, pattern, pattern)
	}

	return db
}

// List 分页获取已发布画廊列表，按创建时间倒序
func (r *Repository) List(f Filters, limit, offset int) ([]*GalleryInfo, int64, error) {
	var total int64
	countQuery := r.applyFilters(r.db.Model(&models.Gallery{}), f)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var galleries []*models.Gallery
	query := r.applyFilters(r.db.Model(&models.Gallery{}).Preload("Curator"), f)
	err := query.Order("galleries.created_at DESC").Limit(limit).Offset(offset).Find(&galleries).Error
	if err != nil {
		return nil, 0, err
	}

	return r.attachCounts(galleries, total)
}

// ListByCurator 获取策展人自己的全部画廊，含未发布，按最近更新倒序
func (r *Repository) ListByCurator(curatorID uint, limit, offset int) ([]*GalleryInfo, int64, error) {
	var total int64
	db := r.db.Model(&models.Gallery{}).Where("curator_id = ?", curatorID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var galleries []*models.Gallery
	err := r.db.Preload("Curator").
		Where("curator_id = ?", curatorID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&galleries).Error
	if err != nil {
		return nil, 0, err
	}

	return r.attachCounts(galleries, total)
}

// attachCounts 批量补齐成员数量
func (r *Repository) attachCounts(galleries []*models.Gallery, total int64) ([]*GalleryInfo, int64, error) {
	if len(galleries) == 0 {
		return []*GalleryInfo{}, total, nil
	}

	galleryIDs := make([]uint, len(galleries))
	for i, gallery := range galleries {
		galleryIDs[i] = gallery.ID
	}

	var counts []struct {
		GalleryID uint
		Count     int64
	}
	err := r.db.Table("gallery_artworks").
		Select("gallery_id, COUNT(*) as count").
		Where("gallery_id IN ?", galleryIDs).
		Group("gallery_id").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, err
	}

	countMap := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countMap[c.GalleryID] = c.Count
	}

	result := make([]*GalleryInfo, len(galleries))
	for i, gallery := range galleries {
		result[i] = &GalleryInfo{Gallery: gallery, ArtworkCount: countMap[gallery.ID]}
	}

	return result, total, nil
}

// Update 保存画廊
func (r *Repository) Update(gallery *models.Gallery) error {
	return r.db.Save(gallery).Error
}

// IncrementViewCount 浏览计数加一
func (r *Repository) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Gallery{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// MemberCount 获取画廊成员数量
func (r *Repository) MemberCount(galleryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GalleryArtwork{}).Where("gallery_id = ?", galleryID).Count(&count).Error
	return count, err
}

// AddMember 添加作品到画廊
// 未指定顺序时取当前最大值加一，追加到末尾。
func (r *Repository) AddMember(galleryID, artworkID uint, order *int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.GalleryArtwork{}).
			Where("gallery_id = ? AND artwork_id = ?", galleryID, artworkID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyMember
		}

		displayOrder := 0
		if order != nil {
			displayOrder = *order
		} else {
			var maxOrder int
			err = tx.Model(&models.GalleryArtwork{}).
				Where("gallery_id = ?", galleryID).
				Select("COALESCE(MAX(display_order), 0)").
				Scan(&maxOrder).Error
			if err != nil {
				return err
			}
			displayOrder = maxOrder + 1
		}

		link := models.GalleryArtwork{
			GalleryID:    galleryID,
			ArtworkID:    artworkID,
			DisplayOrder: displayOrder,
		}
		return tx.Create(&link).Error
	})
}

// RemoveMember 从画廊移除作品，剩余顺序保留空洞
func (r *Repository) RemoveMember(galleryID, artworkID uint) (bool, error) {
	result := r.db.Where("gallery_id = ? AND artwork_id = ?", galleryID, artworkID).
		Delete(&models.GalleryArtwork{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// OrderEntry 一条顺序更新
type OrderEntry struct {
	ArtworkID    uint
	DisplayOrder int
}

// UpdateOrder 批量更新成员显示顺序，不在画廊中的条目被忽略
func (r *Repository) UpdateOrder(galleryID uint, entries []OrderEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			err := tx.Model(&models.GalleryArtwork{}).
				Where("gallery_id = ? AND artwork_id = ?", galleryID, entry.ArtworkID).
				Update("display_order", entry.DisplayOrder).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete 删除画廊及其成员关联
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_id = ?", id).Delete(&models.GalleryArtwork{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Gallery{}, id).Error
	})
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// WithTx 返回使用指定事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}
