package handlers

import (
	"errors"
	"net/http"

	"folio/lifecycle"
	"folio/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) AlbumCreate(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	respond(c, h.Service.CreateAlbum(c.Request.Context(), form))
}

func (h *Handlers) AlbumUpdate(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	id, ok := idParam(c, form, "id")
	if !ok {
		return
	}
	respond(c, h.Service.UpdateAlbum(c.Request.Context(), id, form))
}

// AlbumReorder takes the complete new order as repeated photo_ids values
func (h *Handlers) AlbumReorder(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	id, ok := idParam(c, form, "id")
	if !ok {
		return
	}
	respond(c, h.Service.ReorderAlbum(c.Request.Context(), id, form.IDs("photo_ids")))
}

func (h *Handlers) AlbumDelete(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	id, ok := idParam(c, form, "id")
	if !ok {
		return
	}
	respond(c, h.Service.DeleteAlbum(c.Request.Context(), id))
}

func (h *Handlers) AlbumCover(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	id, ok := idParam(c, form, "id")
	if !ok {
		return
	}
	respond(c, h.Service.RegenerateAlbumCover(c.Request.Context(), id))
}

func (h *Handlers) AlbumList(c *gin.Context, user *models.User) {
	albums, err := h.Service.ListAlbums(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, albums)
}

func (h *Handlers) AlbumPhotos(c *gin.Context, user *models.User) {
	id, ok := idParam(c, lifecycle.NewForm(), "album_id")
	if !ok {
		return
	}
	photos, err := h.Service.AlbumPhotos(c.Request.Context(), id)
	if errors.Is(err, lifecycle.ErrNotFound) {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, photos)
}
