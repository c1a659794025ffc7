package auth

import (
	"fmt"
	"testing"

	"github.com/anoixa/art-gallery/database/models"
	"github.com/anoixa/art-gallery/database/repo/users"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupService 创建测试服务
func setupService(t *testing.T) *Service {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}))

	return NewService(users.NewRepository(db))
}

func TestService_Register(t *testing.T) {
	svc := setupService(t)

	user, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
		Role:     models.RoleArtist,
		Bio:      "Painter",
	})
	assert.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleArtist, user.Role)
	// 密码不以明文入库
	assert.NotEqual(t, "password123", user.Password)
}

func TestService_Register_AdminRoleRejected(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(RegisterInput{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "password123",
		Role:     models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Register(RegisterInput{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "password123",
		Role:     "superuser",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestService_Register_Duplicate(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "pw", Role: models.RoleCurator,
	})
	assert.NoError(t, err)

	// 用户名重复
	_, err = svc.Register(RegisterInput{
		Username: "bob", Email: "other@example.com", Password: "pw", Role: models.RoleArtist,
	})
	assert.ErrorIs(t, err, ErrUserExists)

	// 邮箱重复
	_, err = svc.Register(RegisterInput{
		Username: "other", Email: "bob@example.com", Password: "pw", Role: models.RoleArtist,
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Authenticate(t *testing.T) {
	svc := setupService(t)

	registered, err := svc.Register(RegisterInput{
		Username: "carol", Email: "carol@example.com", Password: "secret", Role: models.RoleArtist,
	})
	assert.NoError(t, err)

	// 登录凭据是邮箱，不是用户名
	user, err := svc.Authenticate("carol@example.com", "secret")
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate("carol", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("carol@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_UpdateProfile(t *testing.T) {
	svc := setupService(t)

	user, err := svc.Register(RegisterInput{
		Username: "dave", Email: "dave@example.com", Password: "pw", Role: models.RoleArtist,
	})
	assert.NoError(t, err)

	bio := "Sculptor from Lisbon"
	updated, err := svc.UpdateProfile(user.ID, UpdateProfileInput{Bio: &bio})
	assert.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	// 未提供的字段保持不变
	assert.Equal(t, "", updated.ProfileImage)

	_, err = svc.UpdateProfile(999, UpdateProfileInput{Bio: &bio})
	assert.ErrorIs(t, err, ErrUserNotFound)

	// 空更新被拒绝
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestService_UpdateProfile_UsernameAndEmail(t *testing.T) {
	svc := setupService(t)

	user, err := svc.Register(RegisterInput{
		Username: "erin", Email: "erin@example.com", Password: "pw", Role: models.RoleCurator,
	})
	assert.NoError(t, err)

	_, err = svc.Register(RegisterInput{
		Username: "frank", Email: "frank@example.com", Password: "pw", Role: models.RoleArtist,
	})
	assert.NoError(t, err)

	// 改名并换邮箱
	username := "erin-curates"
	email := "erin@gallery.example.com"
	updated, err := svc.UpdateProfile(user.ID, UpdateProfileInput{Username: &username, Email: &email})
	assert.NoError(t, err)
	assert.Equal(t, "erin-curates", updated.Username)
	assert.Equal(t, "erin@gallery.example.com", updated.Email)

	// 被其他用户占用的用户名或邮箱拒绝
	taken := "frank"
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{Username: &taken})
	assert.ErrorIs(t, err, ErrUserExists)

	takenEmail := "frank@example.com"
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{Email: &takenEmail})
	assert.ErrorIs(t, err, ErrUserExists)

	// 保持自己当前的用户名不算冲突
	current := "erin-curates"
	_, err = svc.UpdateProfile(user.ID, UpdateProfileInput{Username: &current})
	assert.NoError(t, err)
}
