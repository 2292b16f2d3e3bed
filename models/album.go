package models

import "time"

type Album struct {
	ID        uint64     `gorm:"primaryKey" json:"id"`
	CreatedAt int64      `json:"created_at"`
	UpdatedAt int64      `json:"updated_at"`
	Title     string     `gorm:"type:varchar(300)" json:"title"`
	Date      *time.Time `gorm:"index" json:"date"`
	IsVisible bool       `gorm:"not null" json:"is_visible"`
	// CoverURL is derived from the first photos; empty when the album has none
	CoverURL string `gorm:"type:varchar(500)" json:"cover_url"`
}

// AlbumPhoto is a membership; Position sets the display order inside the album
type AlbumPhoto struct {
	AlbumID  uint64 `gorm:"primaryKey;index:album_position,priority:1"`
	Album    Album  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PhotoID  uint64 `gorm:"primaryKey"`
	Photo    Photo  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Position int    `gorm:"not null;index:album_position,priority:2"`
}

type AlbumTag struct {
	AlbumID uint64 `gorm:"primaryKey"`
	Album   Album  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	TagID   uint64 `gorm:"primaryKey"`
	Tag     Tag    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
