package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anoixa/art-gallery/api"
	"github.com/anoixa/art-gallery/api/middleware"
	"github.com/anoixa/art-gallery/database/models"
	"github.com/anoixa/art-gallery/database/repo/users"
	authsvc "github.com/anoixa/art-gallery/internal/services/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRouter 创建带认证路由的测试路由器
func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	assert.NoError(t, api.TokenInit("auth-handler-test-secret", "1h"))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}))

	handler := NewHandler(authsvc.NewService(users.NewRepository(db)))

	router := gin.New()
	router.POST("/api/auth/register", handler.Register)
	router.POST("/api/auth/login", handler.Login)
	router.GET("/api/auth/profile", middleware.RequireAuth(), handler.GetProfile)
	router.PUT("/api/auth/profile", middleware.RequireAuth(), handler.UpdateProfile)
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine, username, role string) string {
	w := doJSON(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestHandler_RegisterAndLogin(t *testing.T) {
	router := setupRouter(t)

	register(t, router, "alice", "artist")

	// 用邮箱登录
	w := doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	// 密码不出现在响应中
	assert.NotContains(t, w.Body.String(), "password123")

	// 用户名不是登录凭据
	w = doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 错误密码
	w = doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Register_Validation(t *testing.T) {
	router := setupRouter(t)

	// admin 角色不可注册
	w := doJSON(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "mallory",
		"email":    "mallory@example.com",
		"password": "password123",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 缺少邮箱
	w = doJSON(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bob",
		"password": "password123",
		"role":     "artist",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 重复用户名
	register(t, router, "carol", "curator")
	w = doJSON(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "carol",
		"email":    "other@example.com",
		"password": "password123",
		"role":     "artist",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Profile(t *testing.T) {
	router := setupRouter(t)
	token := register(t, router, "dave", "artist")

	// 未认证被拒绝
	w := doJSON(router, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"dave"`)

	// 更新简介
	w = doJSON(router, http.MethodPut, "/api/auth/profile", token, gin.H{
		"bio": "Painter from Porto",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Painter from Porto")

	// 空更新被拒绝
	w = doJSON(router, http.MethodPut, "/api/auth/profile", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UpdateProfile_UsernameAndEmail(t *testing.T) {
	router := setupRouter(t)
	token := register(t, router, "erin", "curator")
	register(t, router, "frank", "artist")

	// 改名
	w := doJSON(router, http.MethodPut, "/api/auth/profile", token, gin.H{
		"username": "erin-curates",
		"email":    "erin@gallery.example.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"erin-curates"`)

	// 占用他人用户名冲突
	w = doJSON(router, http.MethodPut, "/api/auth/profile", token, gin.H{
		"username": "frank",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 占用他人邮箱冲突
	w = doJSON(router, http.MethodPut, "/api/auth/profile", token, gin.H{
		"email": "frank@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
