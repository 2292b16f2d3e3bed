package handlers

import (
	"net/http"

	"folio/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) PhotoCreate(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	respond(c, h.Service.CreatePhoto(c.Request.Context(), form))
}

func (h *Handlers) PhotoUpdate(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	id, ok := idParam(c, form, "id")
	if !ok {
		return
	}
	respond(c, h.Service.UpdatePhoto(c.Request.Context(), id, form))
}

func (h *Handlers) PhotoDelete(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	id, ok := idParam(c, form, "id")
	if !ok {
		return
	}
	respond(c, h.Service.DeletePhoto(c.Request.Context(), id))
}

func (h *Handlers) PhotoList(c *gin.Context, user *models.User) {
	photos, err := h.Service.ListPhotos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, photos)
}
