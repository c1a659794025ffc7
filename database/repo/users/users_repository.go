package users

import (
	"context"
	"errors"
	"log"

	"github.com/anoixa/art-gallery/database/models"
	"github.com/anoixa/art-gallery/utils/crypto"
	"gorm.io/gorm"
)

// Repository 用户仓库 - 封装所有用户相关的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建用户
func (r *Repository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID 通过ID获取用户
func (r *Repository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 通过用户名获取用户
func (r *Repository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 通过邮箱获取用户
func (r *Repository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsernameOrEmail 检查用户名或邮箱是否已被占用
func (r *Repository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// TakenByOther 检查用户名或邮箱是否被其他用户占用，空参数跳过
func (r *Repository) TakenByOther(id uint, username, email string) (bool, error) {
	db := r.db.Model(&models.User{}).Where("id <> ?", id)
	switch {
	case username != "" && email != "":
		db = db.Where("username = ? OR email = ?", username, email)
	case username != "":
		db = db.Where("username = ?", username)
	case email != "":
		db = db.Where("email = ?", email)
	default:
		return false, nil
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

// Update 更新用户
func (r *Repository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateProfile 更新用户资料字段
func (r *Repository) UpdateProfile(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// CreateDefaultAdminUser 创建默认管理员账户，已存在时跳过
func (r *Repository) CreateDefaultAdminUser(username, email, password string) error {
	var count int64
	if err := r.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.GenerateFromPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
	}
	if err := r.db.Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	log.Printf("Created default admin user %q", username)
	return nil
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// WithTx 返回使用指定事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}
