package models

import "gorm.io/gorm"

// Tag 标签，仅在审核时惰性创建，从不随作品删除
type Tag struct {
	gorm.Model
	Name string `gorm:"type:varchar(50);uniqueIndex;not null"`

	Artworks []*Artwork `gorm:"many2many:artwork_tags;"`
}
