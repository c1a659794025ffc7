package tags

import (
	"strings"

	"github.com/anoixa/art-gallery/database/models"
	tagsrepo "github.com/anoixa/art-gallery/database/repo/tags"
	"gorm.io/gorm"
)

// Service 标签服务
type Service struct {
	tagsRepo *tagsrepo.Repository
}

// NewService 创建标签服务
func NewService(tagsRepo *tagsrepo.Repository) *Service {
	return &Service{tagsRepo: tagsRepo}
}

// NormalizeNames 清洗标签名，去掉首尾空白、空项与重复项，保留原始顺序
func NormalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		result = append(result, trimmed)
	}
	return result
}

// ReplaceForArtworkTx 在给定事务内把作品标签整体替换为 names
// 不存在的标签会被创建，被替换下来的标签不删除。
func (s *Service) ReplaceForArtworkTx(tx *gorm.DB, artworkID uint, names []string) ([]*models.Tag, error) {
	repo := s.tagsRepo.WithTx(tx)

	normalized := NormalizeNames(names)
	resolved := make([]*models.Tag, 0, len(normalized))
	for _, name := range normalized {
		tag, err := repo.GetOrCreate(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, tag)
	}

	if err := repo.ReplaceForArtwork(artworkID, resolved); err != nil {
		return nil, err
	}

	return resolved, nil
}

// ListAll 获取全部标签
func (s *Service) ListAll() ([]*models.Tag, error) {
	return s.tagsRepo.ListAll()
}

// ListForArtwork 获取作品的标签
func (s *Service) ListForArtwork(artworkID uint) ([]*models.Tag, error) {
	return s.tagsRepo.ListForArtwork(artworkID)
}
