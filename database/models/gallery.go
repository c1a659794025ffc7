package models

import "gorm.io/gorm"

type Gallery struct {
	gorm.Model
	Name        string `gorm:"type:varchar(100);not null;index"`
	Description string `gorm:"type:text"`

	CuratorID uint `gorm:"not null;index"`
	Curator   User `gorm:"foreignKey:CuratorID"`

	// 仅当画廊成员非空时才允许置为 true
	IsPublished bool  `gorm:"default:false;not null;index"`
	ViewCount   int64 `gorm:"default:0;not null"`
}

// GalleryArtwork 画廊成员关联，携带显示顺序；顺序允许留空洞，从不压缩
type GalleryArtwork struct {
	GalleryID    uint `gorm:"primaryKey;autoIncrement:false"`
	ArtworkID    uint `gorm:"primaryKey;autoIncrement:false"`
	DisplayOrder int  `gorm:"not null"`
}

// TableName 指定关联表名
func (GalleryArtwork) TableName() string {
	return "gallery_artworks"
}
