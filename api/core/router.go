package core

import (
	"net/http"
	"time"

	"github.com/anoixa/art-gallery/api/common"
	handlerAnalytics "github.com/anoixa/art-gallery/api/handler/analytics"
	handlerArtworks "github.com/anoixa/art-gallery/api/handler/artworks"
	handlerAuth "github.com/anoixa/art-gallery/api/handler/auth"
	handlerCurator "github.com/anoixa/art-gallery/api/handler/curator"
	handlerGalleries "github.com/anoixa/art-gallery/api/handler/galleries"
	handlerUploads "github.com/anoixa/art-gallery/api/handler/uploads"
	"github.com/anoixa/art-gallery/api/middleware"
	"github.com/anoixa/art-gallery/config"
	"github.com/anoixa/art-gallery/database/models"
	"github.com/anoixa/art-gallery/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// setupRouter 装配全部路由与中间件
func setupRouter(container *app.Container) (*gin.Engine, func()) {
	cfg := container.Config

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORSAllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{cfg.BaseURL()}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	// 并发限制，避免内存过载
	concurrencyLimiter := middleware.NewConcurrencyLimiter(100)
	router.Use(concurrencyLimiter.Middleware())

	// 基础监控指标
	router.Use(middleware.Metrics())

	// 速率限制
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
	}

	registerBasicRoutes(router, container)
	registerUploadRoutes(router, container, apiRateLimiter)
	registerAPIRoutes(router, container, apiRateLimiter, authRateLimiter)

	return router, cleanup
}

// registerBasicRoutes 注册运维相关路由
func registerBasicRoutes(router *gin.Engine, container *app.Container) {
	router.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(container.DB),
				"cache":    checkCacheHealth(container.CacheFactory),
				"storage":  checkStorageHealth(container.StorageFactory),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(httpStatus, health)
	})

	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.GetMetrics())
	})
}

// registerUploadRoutes 注册图片公共访问路由
func registerUploadRoutes(router *gin.Engine, container *app.Container, limiter *middleware.IPRateLimiter) {
	uploadsHandler := handlerUploads.NewHandler(container.ArtworksService)

	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(limiter.Middleware())
	{
		uploadsGroup.GET("/:identifier", uploadsHandler.GetImage) // GET /uploads/{photo}
	}
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, container *app.Container, apiRateLimiter, authRateLimiter *middleware.IPRateLimiter) {
	authHandler := handlerAuth.NewHandler(container.AuthService)
	artworksHandler := handlerArtworks.NewHandler(container.ArtworksService)
	curatorHandler := handlerCurator.NewHandler(container.ArtworksService, container.TagsService)
	galleriesHandler := handlerGalleries.NewHandler(container.GalleriesService)
	analyticsHandler := handlerAnalytics.NewHandler(container.AnalyticsService)

	roleArtist := string(models.RoleArtist)
	roleCurator := string(models.RoleCurator)
	roleAdmin := string(models.RoleAdmin)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	apiGroup.Use(apiRateLimiter.Middleware())
	{
		// 认证与个人资料
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authRateLimiter.Middleware(), authHandler.Register) // POST /api/auth/register
			authGroup.POST("/login", authRateLimiter.Middleware(), authHandler.Login)      // POST /api/auth/login

			authGroup.GET("/profile", middleware.RequireAuth(), authHandler.GetProfile)    // GET /api/auth/profile
			authGroup.PUT("/profile", middleware.RequireAuth(), authHandler.UpdateProfile) // PUT /api/auth/profile
		}

		// 作品
		artworksGroup := apiGroup.Group("/artworks")
		{
			artworksGroup.GET("", middleware.OptionalAuth(), artworksHandler.ListArtworks)    // GET /api/artworks
			artworksGroup.GET("/:id", middleware.OptionalAuth(), artworksHandler.GetArtwork)  // GET /api/artworks/{id}
			artworksGroup.POST("/:id/like", artworksHandler.LikeArtwork)                      // POST /api/artworks/{id}/like

			artworksGroup.POST("", middleware.RequireAuth(), middleware.RequireRole(roleArtist), artworksHandler.SubmitArtwork) // POST /api/artworks
			artworksGroup.PUT("/:id", middleware.RequireAuth(), middleware.RequireRole(roleArtist, roleAdmin), artworksHandler.UpdateArtwork)    // PUT /api/artworks/{id}
			artworksGroup.DELETE("/:id", middleware.RequireAuth(), middleware.RequireRole(roleArtist, roleAdmin), artworksHandler.DeleteArtwork) // DELETE /api/artworks/{id}
		}

		// 策展工作台
		curatorGroup := apiGroup.Group("/curator")
		curatorGroup.Use(middleware.RequireAuth())
		curatorGroup.Use(middleware.RequireRole(roleCurator, roleAdmin))
		{
			curatorGroup.GET("/pending", curatorHandler.PendingQueue) // GET /api/curator/pending
			curatorGroup.POST("/review/:id", curatorHandler.Review)   // POST /api/curator/review/{id}
			curatorGroup.GET("/history", curatorHandler.History)      // GET /api/curator/history
			curatorGroup.GET("/tags", curatorHandler.Tags)            // GET /api/curator/tags
		}

		// 画廊
		galleriesGroup := apiGroup.Group("/galleries")
		{
			galleriesGroup.GET("", middleware.OptionalAuth(), galleriesHandler.ListGalleries)   // GET /api/galleries
			galleriesGroup.GET("/:id", middleware.OptionalAuth(), galleriesHandler.GetGallery)  // GET /api/galleries/{id}

			curatorOnly := galleriesGroup.Group("")
			curatorOnly.Use(middleware.RequireAuth())
			curatorOnly.Use(middleware.RequireRole(roleCurator, roleAdmin))
			{
				curatorOnly.GET("/curator/own", galleriesHandler.ListOwnGalleries) // GET /api/galleries/curator/own
				curatorOnly.POST("", galleriesHandler.CreateGallery)               // POST /api/galleries
				curatorOnly.PUT("/:id", galleriesHandler.UpdateGallery)            // PUT /api/galleries/{id}
				curatorOnly.DELETE("/:id", galleriesHandler.DeleteGallery)         // DELETE /api/galleries/{id}

				curatorOnly.POST("/:id/artworks", galleriesHandler.AddArtwork)                   // POST /api/galleries/{id}/artworks
				curatorOnly.DELETE("/:id/artworks/:artwork_id", galleriesHandler.RemoveArtwork)  // DELETE /api/galleries/{id}/artworks/{artworkId}
				curatorOnly.PUT("/:id/order", galleriesHandler.ReorderArtworks)                  // PUT /api/galleries/{id}/order
			}
		}

		// 统计
		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.GET("/site", analyticsHandler.SiteStats) // GET /api/analytics/site
			analyticsGroup.GET("/artist", middleware.RequireAuth(), middleware.RequireRole(roleArtist, roleAdmin), analyticsHandler.ArtistStats)    // GET /api/analytics/artist
			analyticsGroup.GET("/curator", middleware.RequireAuth(), middleware.RequireRole(roleCurator, roleAdmin), analyticsHandler.CuratorStats) // GET /api/analytics/curator
		}
	}
}
