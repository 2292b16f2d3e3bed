package models

import (
	"folio/db"

	"gorm.io/gorm"
)

// Migrate creates or updates every catalog table
func Migrate(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&User{},
		&Tag{},
		&SearchTag{},
		&Photo{},
		&Album{},
		&AlbumPhoto{},
		&PhotoTag{},
		&PhotoSearchTag{},
		&AlbumTag{},
		&HeroConfig{},
	)
}

func Init() {
	if err := Migrate(db.Instance); err != nil {
		panic(err)
	}
}
