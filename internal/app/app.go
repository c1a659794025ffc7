package app

import (
	"fmt"
	"log"

	"github.com/anoixa/art-gallery/cache"
	"github.com/anoixa/art-gallery/config"
	"github.com/anoixa/art-gallery/database"
	artworksrepo "github.com/anoixa/art-gallery/database/repo/artworks"
	galleriesrepo "github.com/anoixa/art-gallery/database/repo/galleries"
	tagsrepo "github.com/anoixa/art-gallery/database/repo/tags"
	usersrepo "github.com/anoixa/art-gallery/database/repo/users"
	"github.com/anoixa/art-gallery/internal/services/analytics"
	"github.com/anoixa/art-gallery/internal/services/artworks"
	"github.com/anoixa/art-gallery/internal/services/auth"
	"github.com/anoixa/art-gallery/internal/services/galleries"
	"github.com/anoixa/art-gallery/internal/services/tags"
	"github.com/anoixa/art-gallery/storage"
	"gorm.io/gorm"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	Config *config.Config
	DB     *gorm.DB

	StorageFactory *storage.Factory
	CacheFactory   *cache.Factory

	UsersRepo     *usersrepo.Repository
	ArtworksRepo  *artworksrepo.Repository
	TagsRepo      *tagsrepo.Repository
	GalleriesRepo *galleriesrepo.Repository

	AuthService      *auth.Service
	TagsService      *tags.Service
	ArtworksService  *artworks.Service
	GalleriesService *galleries.Service
	AnalyticsService *analytics.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{Config: cfg}
}

// Init 初始化全部依赖
func (c *Container) Init() error {
	if err := c.initDatabase(); err != nil {
		return err
	}
	if err := c.initInfrastructure(); err != nil {
		return err
	}
	c.initServices()

	if err := c.seedAdmin(); err != nil {
		return err
	}

	return nil
}

// initDatabase 初始化数据库与仓库
func (c *Container) initDatabase() error {
	db, err := database.NewDB(c.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	c.DB = db
	c.UsersRepo = usersrepo.NewRepository(db)
	c.ArtworksRepo = artworksrepo.NewRepository(db)
	c.TagsRepo = tagsrepo.NewRepository(db)
	c.GalleriesRepo = galleriesrepo.NewRepository(db)

	return nil
}

// initInfrastructure 初始化存储与缓存
func (c *Container) initInfrastructure() error {
	storageFactory, err := storage.NewFactory(c.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.StorageFactory = storageFactory

	cacheFactory, err := cache.NewFactory(c.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.CacheFactory = cacheFactory

	return nil
}

// initServices 初始化业务服务
func (c *Container) initServices() {
	c.AuthService = auth.NewService(c.UsersRepo)
	c.TagsService = tags.NewService(c.TagsRepo)
	c.ArtworksService = artworks.NewService(c.DB, c.ArtworksRepo, c.TagsService, c.StorageFactory, c.Config.UploadMaxSizeMB)
	c.GalleriesService = galleries.NewService(c.GalleriesRepo, c.ArtworksRepo)
	c.AnalyticsService = analytics.NewService(c.DB, c.CacheFactory, c.Config.CacheStatsTTL)
}

// seedAdmin 按配置创建默认管理员
func (c *Container) seedAdmin() error {
	if c.Config.AdminUsername == "" || c.Config.AdminPassword == "" {
		return nil
	}
	return c.UsersRepo.CreateDefaultAdminUser(c.Config.AdminUsername, c.Config.AdminEmail, c.Config.AdminPassword)
}

// Close 释放容器持有的资源
func (c *Container) Close() {
	if c.CacheFactory != nil {
		if err := c.CacheFactory.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
	}
}
