package models

type HeroConfig struct {
	ID              uint64 `gorm:"primaryKey" json:"id"`
	UpdatedAt       int64  `json:"updated_at"`
	DesktopVideoURL string `gorm:"type:varchar(500)" json:"desktop_video_url"`
	MobileVideoURL  string `gorm:"type:varchar(500)" json:"mobile_video_url"`
	PosterURL       string `gorm:"type:varchar(500)" json:"poster_url"`
	PhotoURL        string `gorm:"type:varchar(500)" json:"photo_url"`
	PhotoAlt        string `gorm:"type:varchar(500)" json:"photo_alt"`
	Description     string `gorm:"type:text" json:"description"`
	Location        string `gorm:"type:varchar(300)" json:"location"`
}
