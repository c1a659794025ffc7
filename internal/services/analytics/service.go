package analytics

import (
	"context"
	"log"
	"time"

	"github.com/anoixa/art-gallery/cache"
	"github.com/anoixa/art-gallery/cache/types"
	"github.com/anoixa/art-gallery/database/models"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Service 统计服务
// 全站统计走缓存，singleflight 防止缓存失效时的并发击穿。
type Service struct {
	db       *gorm.DB
	cache    *cache.Factory
	statsTTL time.Duration
	group    singleflight.Group
}

// NewService 创建统计服务
func NewService(db *gorm.DB, cacheFactory *cache.Factory, statsTTLSeconds int) *Service {
	if statsTTLSeconds <= 0 {
		statsTTLSeconds = 60
	}
	return &Service{
		db:       db,
		cache:    cacheFactory,
		statsTTL: time.Duration(statsTTLSeconds) * time.Second,
	}
}

// SiteTotals 全站总量
type SiteTotals struct {
	TotalArtworks  int64 `json:"total_artworks"`
	TotalArtists   int64 `json:"total_artists"`
	TotalGalleries int64 `json:"total_galleries"`
}

// GallerySummary 画廊统计摘要
type GallerySummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ViewCount    int64  `json:"view_count"`
	CuratorName  string `json:"curator_name,omitempty"`
	ArtworkCount int64  `json:"artwork_count,omitempty"`
}

// ArtworkSummary 作品统计摘要
type ArtworkSummary struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
	ViewCount  int64  `json:"view_count"`
	LikeCount  int64  `json:"like_count"`
	Status     string `json:"status,omitempty"`
	ArtistName string `json:"artist_name,omitempty"`
}

// SiteStats 全站公开统计
type SiteStats struct {
	Totals       SiteTotals       `json:"totals"`
	TopGalleries []GallerySummary `json:"top_galleries"`
	TopArtworks  []ArtworkSummary `json:"top_artworks"`
}

// GetSiteStats 获取全站统计，短 TTL 缓存
func (s *Service) GetSiteStats(ctx context.Context) (*SiteStats, error) {
	key := cache.SiteStats.Build()

	var cached SiteStats
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !types.IsCacheMiss(err) {
		log.Printf("Failed to read site stats from cache: %v", err)
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		stats, err := s.computeSiteStats(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, stats, s.statsTTL); err != nil {
			log.Printf("Failed to cache site stats: %v", err)
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*SiteStats), nil
}

// computeSiteStats 执行全站统计查询
func (s *Service) computeSiteStats(ctx context.Context) (*SiteStats, error) {
	db := s.db.WithContext(ctx)
	stats := &SiteStats{
		TopGalleries: []GallerySummary{},
		TopArtworks:  []ArtworkSummary{},
	}

	if err := db.Model(&models.Artwork{}).
		Where("status = ?", models.ArtworkStatusApproved).
		Count(&stats.Totals.TotalArtworks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleArtist).
		Count(&stats.Totals.TotalArtists).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Gallery{}).
		Where("is_published = ?", true).
		Count(&stats.Totals.TotalGalleries).Error; err != nil {
		return nil, err
	}

	err := db.Table("galleries").
		Select("galleries.id, galleries.name, galleries.view_count, users.username as curator_name").
		Joins("JOIN users ON users.id = galleries.curator_id").
		Where("galleries.is_published = ? AND galleries.deleted_at IS NULL", true).
		Order("galleries.view_count DESC").
		Limit(5).
		Scan(&stats.TopGalleries).Error
	if err != nil {
		return nil, err
	}

	err = db.Table("artworks").
		Select("artworks.id, artworks.title, artworks.image_url, artworks.view_count, artworks.like_count, users.username as artist_name").
		Joins("JOIN users ON users.id = artworks.artist_id").
		Where("artworks.status = ? AND artworks.deleted_at IS NULL", models.ArtworkStatusApproved).
		Order("artworks.like_count DESC").
		Limit(5).
		Scan(&stats.TopArtworks).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// ArtistStats 艺术家统计
type ArtistStats struct {
	TotalViews    int64            `json:"total_views"`
	TotalLikes    int64            `json:"total_likes"`
	ArtworkCounts map[string]int64 `json:"artwork_counts"`
	TopArtworks   []ArtworkSummary `json:"top_artworks"`
	FeaturedIn    []GallerySummary `json:"featured_in"`
}

// GetArtistStats 获取艺术家统计
func (s *Service) GetArtistStats(ctx context.Context, artistID uint) (*ArtistStats, error) {
	db := s.db.WithContext(ctx)
	stats := &ArtistStats{
		ArtworkCounts: map[string]int64{
			string(models.ArtworkStatusPending):  0,
			string(models.ArtworkStatusApproved): 0,
			string(models.ArtworkStatusRejected): 0,
		},
		TopArtworks: []ArtworkSummary{},
		FeaturedIn:  []GallerySummary{},
	}

	var totals struct {
		TotalViews int64
		TotalLikes int64
	}
	err := db.Model(&models.Artwork{}).
		Select("COALESCE(SUM(view_count), 0) as total_views, COALESCE(SUM(like_count), 0) as total_likes").
		Where("artist_id = ?", artistID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalViews = totals.TotalViews
	stats.TotalLikes = totals.TotalLikes

	var statusRows []struct {
		Status string
		Count  int64
	}
	err = db.Model(&models.Artwork{}).
		Select("status, COUNT(*) as count").
		Where("artist_id = ?", artistID).
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ArtworkCounts[row.Status] = row.Count
	}

	err = db.Table("artworks").
		Select("id, title, image_url, view_count, like_count, status").
		Where("artist_id = ? AND deleted_at IS NULL", artistID).
		Order("view_count DESC").
		Limit(10).
		Scan(&stats.TopArtworks).Error
	if err != nil {
		return nil, err
	}

	err = db.Table("galleries").
		Select("galleries.id, galleries.name, galleries.view_count, users.username as curator_name, COUNT(DISTINCT gallery_artworks.artwork_id) as artwork_count").
		Joins("JOIN users ON users.id = galleries.curator_id").
		Joins("JOIN gallery_artworks ON gallery_artworks.gallery_id = galleries.id").
		Joins("JOIN artworks ON artworks.id = gallery_artworks.artwork_id").
		Where("artworks.artist_id = ? AND galleries.is_published = ? AND galleries.deleted_at IS NULL", artistID, true).
		Group("galleries.id, galleries.name, galleries.view_count, users.username").
		Order("galleries.view_count DESC").
		Scan(&stats.FeaturedIn).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// CuratorStats 策展人统计
type CuratorStats struct {
	TotalViews    int64            `json:"total_views"`
	TotalArtworks int64            `json:"total_artworks"`
	GalleryViews  []GallerySummary `json:"gallery_views"`
	TopArtworks   []ArtworkSummary `json:"top_artworks"`
}

// GetCuratorStats 获取策展人画廊统计
func (s *Service) GetCuratorStats(ctx context.Context, curatorID uint) (*CuratorStats, error) {
	db := s.db.WithContext(ctx)
	stats := &CuratorStats{
		GalleryViews: []GallerySummary{},
		TopArtworks:  []ArtworkSummary{},
	}

	err := db.Model(&models.Gallery{}).
		Select("COALESCE(SUM(view_count), 0)").
		Where("curator_id = ?", curatorID).
		Scan(&stats.TotalViews).Error
	if err != nil {
		return nil, err
	}

	err = db.Table("gallery_artworks").
		Joins("JOIN galleries ON galleries.id = gallery_artworks.gallery_id").
		Where("galleries.curator_id = ? AND galleries.deleted_at IS NULL", curatorID).
		Select("COUNT(DISTINCT gallery_artworks.artwork_id)").
		Scan(&stats.TotalArtworks).Error
	if err != nil {
		return nil, err
	}

	err = db.Table("galleries").
		Select("galleries.id, galleries.name, galleries.view_count, COUNT(DISTINCT gallery_artworks.artwork_id) as artwork_count").
		Joins("LEFT JOIN gallery_artworks ON gallery_artworks.gallery_id = galleries.id").
		Where("galleries.curator_id = ? AND galleries.deleted_at IS NULL", curatorID).
		Group("galleries.id, galleries.name, galleries.view_count").
		Order("galleries.view_count DESC").
		Limit(10).
		Scan(&stats.GalleryViews).Error
	if err != nil {
		return nil, err
	}

	err = db.Table("artworks").
		Select("DISTINCT artworks.id, artworks.title, artworks.image_url, artworks.view_count, artworks.like_count, users.username as artist_name").
		Joins("JOIN users ON users.id = artworks.artist_id").
		Joins("JOIN gallery_artworks ON gallery_artworks.artwork_id = artworks.id").
		Joins("JOIN galleries ON galleries.id = gallery_artworks.gallery_id").
		Where("galleries.curator_id = ? AND galleries.deleted_at IS NULL AND artworks.deleted_at IS NULL", curatorID).
		Order("artworks.view_count DESC").
		Limit(10).
		Scan(&stats.TopArtworks).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
