package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/anoixa/art-gallery/api"
	"github.com/anoixa/art-gallery/api/common"
	"github.com/anoixa/art-gallery/api/middleware"
	"github.com/anoixa/art-gallery/database/models"
	authsvc "github.com/anoixa/art-gallery/internal/services/auth"
	"github.com/gin-gonic/gin"
)

// Handler 认证与个人资料处理器
type Handler struct {
	svc *authsvc.Service
}

// NewHandler 创建认证处理器
func NewHandler(svc *authsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// UserDTO 对外暴露的用户信息，不含密码
type UserDTO struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	ProfileImage string `json:"profile_image,omitempty"`
	Bio          string `json:"bio,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

// NewUserDTO 从模型构造用户 DTO
func NewUserDTO(user *models.User) *UserDTO {
	return &UserDTO{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         string(user.Role),
		ProfileImage: user.ProfileImage,
		Bio:          user.Bio,
		CreatedAt:    user.CreatedAt.Unix(),
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	Bio      string `json:"bio" binding:"max=500"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      *UserDTO `json:"user"`
}

// Register 注册新用户并签发令牌
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Register(authsvc.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.UserRole(req.Role),
		Bio:      req.Bio,
	})
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrUserExists):
			common.RespondError(c, http.StatusConflict, "Username or email already taken")
		case errors.Is(err, authsvc.ErrInvalidRole):
			common.RespondError(c, http.StatusBadRequest, "Role must be either artist or curator")
		default:
			log.Printf("Failed to register user %s: %v", req.Username, err)
			common.RespondError(c, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	h.respondWithToken(c, user, http.StatusCreated, "Registration successful")
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			common.RespondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("Failed to authenticate user %s: %v", req.Email, err)
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondWithToken(c, user, http.StatusOK, "Login successful")
}

// respondWithToken 签发令牌并返回用户信息
func (h *Handler) respondWithToken(c *gin.Context, user *models.User, httpStatus int, message string) {
	token, expiry, err := api.GenerateToken(user)
	if err != nil {
		log.Printf("Failed to generate token for user %d: %v", user.ID, err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(httpStatus, common.Response{
		Success: true,
		Message: message,
		Data: tokenResponse{
			Token:     token,
			ExpiresAt: expiry.Unix(),
			User:      NewUserDTO(user),
		},
	})
}

// GetProfile 获取当前用户资料
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)

	user, err := h.svc.GetProfile(userID)
	if err != nil {
		if errors.Is(err, authsvc.ErrUserNotFound) {
			common.RespondError(c, http.StatusNotFound, "User not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	common.RespondSuccess(c, NewUserDTO(user))
}

type updateProfileRequest struct {
	Username     *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Bio          *string `json:"bio" binding:"omitempty,max=500"`
	ProfileImage *string `json:"profile_image" binding:"omitempty,max=255"`
}

// UpdateProfile 更新当前用户资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.UpdateProfile(userID, authsvc.UpdateProfileInput{
		Username:     req.Username,
		Email:        req.Email,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrUserNotFound):
			common.RespondError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, authsvc.ErrNoFields):
			common.RespondError(c, http.StatusBadRequest, "No fields to update")
		case errors.Is(err, authsvc.ErrUserExists):
			common.RespondError(c, http.StatusConflict, "Username or email already taken")
		default:
			log.Printf("Failed to update profile for user %d: %v", userID, err)
			common.RespondError(c, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	common.RespondSuccessMessage(c, "Profile updated", NewUserDTO(user))
}
