package artworks

import (
	"context"

	"github.com/anoixa/art-gallery/database/models"
	"gorm.io/gorm"
)

// Repository 作品仓库 - 封装所有作品相关的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的作品仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filters 作品列表的查询条件，零值字段不参与过滤
type Filters struct {
	Status   models.ArtworkStatus
	ArtistID uint
	Tag      string
	Medium   string
	Search   string
}

// Create 创建作品
func (r *Repository) Create(artwork *models.Artwork) error {
	return r.db.Create(artwork).Error
}

// GetByID 通过ID获取作品，预加载作者与标签
func (r *Repository) GetByID(id uint) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.Preload("Artist").Preload("Tags").First(&artwork, id).Error
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

// GetByIdentifier 通过存储标识获取作品
func (r *Repository) GetByIdentifier(identifier string) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.Where("identifier = ?", identifier).First(&artwork).Error
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

// applyFilters 把查询条件拼到查询上，列表与计数共用
func (r *Repository) applyFilters(db *gorm.DB, f Filters) *gorm.DB {
	db = db.Model(&models.Artwork{})

	if f.Status != "" {
		db = db.Where("artworks.status = ?", f.Status)
	}
	if f.ArtistID != 0 {
		db = db.Where("artworks.artist_id = ?", f.ArtistID)
	}
	if f.Medium != "" {
		db = db.Where("artworks.medium = ?", f.Medium)
	}
	if f.Tag != "" {
		db = db.Joins("JOIN artwork_tags ON artwork_tags.artwork_id = artworks.id").
			Joins("JOIN tags ON tags.id = artwork_tags.tag_id").
			Where("tags.name = ?", f.Tag)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		db = db.Joins("JOIN users ON users.id = artworks.artist_id").
			Where("artworks.title LIKE ? OR artworks.description LIKE ? OR users.username LIKE ?",
				pattern, pattern, pattern)
	}

	return db
}

// List 按条件分页获取作品列表，按创建时间倒序
func (r *Repository) List(f Filters, limit, offset int) ([]*models.Artwork, int64, error) {
	var total int64
	if err := r.applyFilters(r.db, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var artworkIDs []uint
	err := r.applyFilters(r.db, f).
		Order("artworks.created_at DESC").
		Limit(limit).
		Offset(offset).
		Pluck("artworks.id", &artworkIDs).Error
	if err != nil {
		return nil, 0, err
	}
	if len(artworkIDs) == 0 {
		return []*models.Artwork{}, total, nil
	}

	var artworks []*models.Artwork
	err = r.db.Preload("Artist").Preload("Tags").
		Where("id IN ?", artworkIDs).
		Order("created_at DESC").
		Find(&artworks).Error
	if err != nil {
		return nil, 0, err
	}

	return artworks, total, nil
}

// ListPending 获取待审核队列，最早提交的排在最前
func (r *Repository) ListPending(limit, offset int) ([]*models.Artwork, int64, error) {
	var total int64
	db := r.db.Model(&models.Artwork{}).Where("status = ?", models.ArtworkStatusPending)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var artworks []*models.Artwork
	err := r.db.Preload("Artist").Preload("Tags").
		Where("status = ?", models.ArtworkStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&artworks).Error
	if err != nil {
		return nil, 0, err
	}

	return artworks, total, nil
}

// ListReviewedBy 获取指定策展人审核过的作品，按审核时间倒序
func (r *Repository) ListReviewedBy(curatorID uint, limit, offset int) ([]*models.Artwork, int64, error) {
	var total int64
	db := r.db.Model(&models.Artwork{}).Where("curator_id = ?", curatorID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var artworks []*models.Artwork
	err := r.db.Preload("Artist").Preload("Tags").
		Where("curator_id = ?", curatorID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&artworks).Error
	if err != nil {
		return nil, 0, err
	}

	return artworks, total, nil
}

// IncrementViewCount 浏览计数加一
func (r *Repository) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Artwork{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// IncrementLikeCount 点赞计数加一
func (r *Repository) IncrementLikeCount(id uint) error {
	return r.db.Model(&models.Artwork{}).Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
}

// Updates 更新指定字段
func (r *Repository) Updates(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Artwork{}).Where("id = ?", id).Updates(fields).Error
}

// Save 保存整个作品记录
func (r *Repository) Save(artwork *models.Artwork) error {
	return r.db.Save(artwork).Error
}

// Delete 删除作品并清理标签与画廊关联
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM artwork_tags WHERE artwork_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("artwork_id = ?", id).Delete(&models.GalleryArtwork{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Artwork{}, id).Error
	})
}

// CountByArtist 统计作者各状态的作品数量
func (r *Repository) CountByArtist(artistID uint) (map[models.ArtworkStatus]int64, error) {
	var rows []struct {
		Status models.ArtworkStatus
		Count  int64
	}
	err := r.db.Model(&models.Artwork{}).
		Select("status, COUNT(*) as count").
		Where("artist_id = ?", artistID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ArtworkStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// WithTx 返回使用指定事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}
