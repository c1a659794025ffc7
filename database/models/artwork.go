package models

import "gorm.io/gorm"

// ArtworkStatus 作品审核状态
type ArtworkStatus string

const (
	ArtworkStatusPending  ArtworkStatus = "pending"
	ArtworkStatusApproved ArtworkStatus = "approved"
	ArtworkStatusRejected ArtworkStatus = "rejected"
)

// Valid 检查状态是否合法
func (s ArtworkStatus) Valid() bool {
	switch s {
	case ArtworkStatusPending, ArtworkStatusApproved, ArtworkStatusRejected:
		return true
	}
	return false
}

// ReviewOutcome 检查状态是否为审核结果（approved/rejected）
func (s ArtworkStatus) ReviewOutcome() bool {
	return s == ArtworkStatusApproved || s == ArtworkStatusRejected
}

type Artwork struct {
	gorm.Model
	Title       string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	Medium      string `gorm:"type:varchar(50);not null"`
	Dimensions  string `gorm:"type:varchar(50)"`

	// Identifier 是存储后端中的对象名，ImageURL 是对外的相对路径
	Identifier string `gorm:"uniqueIndex:idx_artwork_identifier;not null"`
	ImageURL   string `gorm:"type:varchar(255);not null"`
	Width      int
	Height     int

	ArtistID uint `gorm:"not null;index"`
	Artist   User `gorm:"foreignKey:ArtistID"`

	Status ArtworkStatus `gorm:"type:varchar(16);default:pending;not null;index"`

	// 仅由审核操作写入
	CuratorFeedback *string `gorm:"type:text"`
	CuratorID       *uint

	ViewCount int64 `gorm:"default:0;not null"`
	LikeCount int64 `gorm:"default:0;not null"`

	Tags []*Tag `gorm:"many2many:artwork_tags;"`
}
