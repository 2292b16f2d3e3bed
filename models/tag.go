package models

type Tag struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"type:varchar(200);uniqueIndex" json:"title"`
	Important bool   `gorm:"not null" json:"important"`
}

// SearchTag only feeds the public search, it is never displayed
type SearchTag struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"type:varchar(200);uniqueIndex" json:"title"`
	Important bool   `gorm:"not null" json:"important"`
}
