package models

import "time"

type Photo struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	// HighURL is the operative image; LowURL falls back to it when no low variant exists
	HighURL        string     `gorm:"type:varchar(500)" json:"high_url"`
	LowURL         string     `gorm:"type:varchar(500)" json:"low_url"`
	OriginalURL    string     `gorm:"type:varchar(500)" json:"original_url,omitempty"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Alt            string     `gorm:"type:varchar(500)" json:"alt"`
	Title          string     `gorm:"type:varchar(300)" json:"title"`
	Date           *time.Time `gorm:"index" json:"date"`
	IsVisible      bool       `gorm:"not null" json:"is_visible"`
	MainCarousel   bool       `gorm:"not null" json:"main_carousel"`
	PhotosCarousel bool       `gorm:"not null" json:"photos_carousel"`
}

// AssetURLs lists every asset the photo references
func (p *Photo) AssetURLs() []string {
	return []string{p.HighURL, p.LowURL, p.OriginalURL}
}

type PhotoTag struct {
	PhotoID uint64 `gorm:"primaryKey"`
	Photo   Photo  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	TagID   uint64 `gorm:"primaryKey"`
	Tag     Tag    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

type PhotoSearchTag struct {
	PhotoID     uint64    `gorm:"primaryKey"`
	Photo       Photo     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SearchTagID uint64    `gorm:"primaryKey"`
	SearchTag   SearchTag `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
