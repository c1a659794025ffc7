package analytics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anoixa/art-gallery/api"
	"github.com/anoixa/art-gallery/api/middleware"
	"github.com/anoixa/art-gallery/cache"
	"github.com/anoixa/art-gallery/config"
	"github.com/anoixa/art-gallery/database/models"
	analyticssvc "github.com/anoixa/art-gallery/internal/services/analytics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRouter 创建带统计路由的测试路由器
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	assert.NoError(t, api.TokenInit("analytics-handler-test-secret", "1h"))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Artwork{}, &models.Gallery{}, &models.GalleryArtwork{})
	assert.NoError(t, err)

	cacheFactory, err := cache.NewFactory(&config.Config{CacheType: "memory"})
	assert.NoError(t, err)
	t.Cleanup(func() { _ = cacheFactory.Close() })

	handler := NewHandler(analyticssvc.NewService(db, cacheFactory, 60))

	router := gin.New()
	group := router.Group("/api/analytics")
	group.GET("/site", handler.SiteStats)
	group.GET("/artist", middleware.RequireAuth(), middleware.RequireRole("artist", "admin"), handler.ArtistStats)
	group.GET("/curator", middleware.RequireAuth(), middleware.RequireRole("curator", "admin"), handler.CuratorStats)
	return router, db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) (*models.User, string) {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	assert.NoError(t, db.Create(user).Error)

	token, _, err := api.GenerateToken(user)
	assert.NoError(t, err)
	return user, token
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_SiteStats(t *testing.T) {
	router, db := setupRouter(t)
	artist, _ := seedUser(t, db, "artist", models.RoleArtist)

	assert.NoError(t, db.Create(&models.Artwork{
		Title:      "piece",
		Medium:     "oil",
		Identifier: "piece.jpg",
		ImageURL:   "/uploads/piece.jpg",
		ArtistID:   artist.ID,
		Status:     models.ArtworkStatusApproved,
		ViewCount:  5,
	}).Error)

	// 全站统计公开访问
	w := doGet(router, "/api/analytics/site", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Totals struct {
				TotalArtworks int64 `json:"total_artworks"`
				TotalArtists  int64 `json:"total_artists"`
			} `json:"totals"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.Totals.TotalArtworks)
	assert.Equal(t, int64(1), resp.Data.Totals.TotalArtists)
}

func TestHandler_RoleScopedStats(t *testing.T) {
	router, db := setupRouter(t)
	_, artistToken := seedUser(t, db, "artist", models.RoleArtist)
	_, curatorToken := seedUser(t, db, "curator", models.RoleCurator)

	// 各角色只能访问自己的统计入口
	w := doGet(router, "/api/analytics/artist", artistToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(router, "/api/analytics/artist", curatorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(router, "/api/analytics/curator", curatorToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(router, "/api/analytics/curator", artistToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(router, "/api/analytics/artist", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
