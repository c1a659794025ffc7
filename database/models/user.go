package models

import "gorm.io/gorm"

// UserRole 用户角色，注册后不可变更
type UserRole string

const (
	RoleArtist  UserRole = "artist"
	RoleCurator UserRole = "curator"
	RoleAdmin   UserRole = "admin"
)

// Valid 检查角色是否合法
func (r UserRole) Valid() bool {
	switch r {
	case RoleArtist, RoleCurator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Username     string   `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string   `gorm:"type:varchar(100);uniqueIndex;not null"`
	Password     string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(16);not null;index"`
	ProfileImage string   `gorm:"type:varchar(255)"`
	Bio          string   `gorm:"type:text"`
}
