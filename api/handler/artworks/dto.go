package artworks

import (
	"github.com/anoixa/art-gallery/database/models"
)

// ArtistDTO 作品上附带的作者信息
type ArtistDTO struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// ArtworkDTO 对外暴露的作品信息
type ArtworkDTO struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Medium          string     `json:"medium"`
	Dimensions      string     `json:"dimensions,omitempty"`
	ImageURL        string     `json:"image_url"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	Status          string     `json:"status"`
	CuratorFeedback *string    `json:"curator_feedback,omitempty"`
	Artist          *ArtistDTO `json:"artist,omitempty"`
	Tags            []string   `json:"tags"`
	ViewCount       int64      `json:"view_count"`
	LikeCount       int64      `json:"like_count"`
	CreatedAt       int64      `json:"created_at"`
	UpdatedAt       int64      `json:"updated_at"`
}

// NewArtworkDTO 从模型构造作品 DTO
func NewArtworkDTO(artwork *models.Artwork) *ArtworkDTO {
	dto := &ArtworkDTO{
		ID:              artwork.ID,
		Title:           artwork.Title,
		Description:     artwork.Description,
		Medium:          artwork.Medium,
		Dimensions:      artwork.Dimensions,
		ImageURL:        artwork.ImageURL,
		Width:           artwork.Width,
		Height:          artwork.Height,
		Status:          string(artwork.Status),
		CuratorFeedback: artwork.CuratorFeedback,
		Tags:            make([]string, 0, len(artwork.Tags)),
		ViewCount:       artwork.ViewCount,
		LikeCount:       artwork.LikeCount,
		CreatedAt:       artwork.CreatedAt.Unix(),
		UpdatedAt:       artwork.UpdatedAt.Unix(),
	}

	if artwork.Artist.ID != 0 {
		dto.Artist = &ArtistDTO{
			ID:           artwork.Artist.ID,
			Username:     artwork.Artist.Username,
			ProfileImage: artwork.Artist.ProfileImage,
		}
	}

	for _, tag := range artwork.Tags {
		dto.Tags = append(dto.Tags, tag.Name)
	}

	return dto
}

// NewArtworkDTOs 批量构造作品 DTO
func NewArtworkDTOs(artworks []*models.Artwork) []*ArtworkDTO {
	result := make([]*ArtworkDTO, len(artworks))
	for i, artwork := range artworks {
		result[i] = NewArtworkDTO(artwork)
	}
	return result
}
