package tags

import (
	"context"

	"github.com/anoixa/art-gallery/database/models"
	"gorm.io/gorm"
)

// Repository 标签仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的标签仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate 按名称获取标签，不存在则创建
func (r *Repository) GetOrCreate(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// ReplaceForArtwork 用给定标签整体替换作品的标签关联
func (r *Repository) ReplaceForArtwork(artworkID uint, tags []*models.Tag) error {
	if err := r.db.Exec("DELETE FROM artwork_tags WHERE artwork_id = ?", artworkID).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}

	rows := make([]map[string]interface{}, len(tags))
	for i, tag := range tags {
		rows[i] = map[string]interface{}{
			"artwork_id": artworkID,
			"tag_id":     tag.ID,
		}
	}
	return r.db.Table("artwork_tags").Create(rows).Error
}

// ListAll 获取全部标签，按名称排序
func (r *Repository) ListAll() ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.Order("name ASC").Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ListForArtwork 获取指定作品的标签
func (r *Repository) ListForArtwork(artworkID uint) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.
		Joins("JOIN artwork_tags ON artwork_tags.tag_id = tags.id").
		Where("artwork_tags.artwork_id = ?", artworkID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// WithTx 返回使用指定事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}
