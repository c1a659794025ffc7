package auth

import (
	"errors"

	"github.com/anoixa/art-gallery/database/models"
	"github.com/anoixa/art-gallery/database/repo/users"
	"github.com/anoixa/art-gallery/utils/crypto"
	"gorm.io/gorm"
)

var (
	// ErrUserExists 用户名或邮箱已被占用
	ErrUserExists = errors.New("username or email already in use")

	// ErrInvalidRole 注册角色不合法
	ErrInvalidRole = errors.New("role must be either artist or curator")

	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")

	// ErrNoFields 更新请求没有携带任何字段
	ErrNoFields = errors.New("no fields to update")
)

// Service 账号服务
type Service struct {
	usersRepo *users.Repository
}

// NewService 创建账号服务
func NewService(usersRepo *users.Repository) *Service {
	return &Service{usersRepo: usersRepo}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     models.UserRole
	Bio      string
}

// Register 注册新用户
// 角色只能是 artist 或 curator，admin 不开放注册。
func (s *Service) Register(input RegisterInput) (*models.User, error) {
	if input.Role != models.RoleArtist && input.Role != models.RoleCurator {
		return nil, ErrInvalidRole
	}

	exists, err := s.usersRepo.ExistsByUsernameOrEmail(input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hashed, err := crypto.GenerateFromPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		Role:     input.Role,
		Bio:      input.Bio,
	}
	if err := s.usersRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate 校验邮箱密码
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	user, err := s.usersRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := crypto.ComparePasswordAndHash(password, user.Password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetProfile 获取用户资料
func (s *Service) GetProfile(userID uint) (*models.User, error) {
	user, err := s.usersRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput 资料更新参数，nil 字段不修改
type UpdateProfileInput struct {
	Username     *string
	Email        *string
	Bio          *string
	ProfileImage *string
}

// UpdateProfile 更新用户资料，角色与密码不在此处变更
// 修改用户名或邮箱时重新检查唯一性。
func (s *Service) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	if input.Username == nil && input.Email == nil && input.Bio == nil && input.ProfileImage == nil {
		return nil, ErrNoFields
	}

	if _, err := s.GetProfile(userID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	username, email := "", ""
	if input.Username != nil {
		username = *input.Username
		fields["username"] = username
	}
	if input.Email != nil {
		email = *input.Email
		fields["email"] = email
	}
	if input.Bio != nil {
		fields["bio"] = *input.Bio
	}
	if input.ProfileImage != nil {
		fields["profile_image"] = *input.ProfileImage
	}

	if username != "" || email != "" {
		taken, err := s.usersRepo.TakenByOther(userID, username, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUserExists
		}
	}

	if err := s.usersRepo.UpdateProfile(userID, fields); err != nil {
		return nil, err
	}

	return s.GetProfile(userID)
}
