package handlers

import (
	"folio/auth"
)

// Register mounts every admin route; only login is reachable without a session
func (h *Handlers) Register(router *auth.Router) {
	router.Base.POST("/user/login", UserLogin)
	router.POST("/user/logout", UserLogout)
	router.GET("/user/status", UserStatus)
	// Photos
	router.GET("/photo/list", h.PhotoList)
	router.POST("/photo/create", h.PhotoCreate)
	router.POST("/photo/update", h.PhotoUpdate)
	router.POST("/photo/delete", h.PhotoDelete)
	// Albums
	router.GET("/album/list", h.AlbumList)
	router.GET("/album/photos", h.AlbumPhotos)
	router.POST("/album/create", h.AlbumCreate)
	router.POST("/album/update", h.AlbumUpdate)
	router.POST("/album/reorder", h.AlbumReorder)
	router.POST("/album/delete", h.AlbumDelete)
	router.POST("/album/cover", h.AlbumCover)
	// Hero
	router.GET("/hero", h.HeroGet)
	router.POST("/hero/update", h.HeroUpdate)
	router.POST("/hero/poster", h.HeroPoster)
	// Tags
	router.GET("/tag/list", h.TagList)
	router.POST("/tag/save", h.TagSave)
	router.POST("/tag/delete", h.TagDelete)
}
