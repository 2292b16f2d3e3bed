package handlers

import (
	"net/http"
	"strconv"

	"folio/lifecycle"
	"folio/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) TagSave(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	kind, err := lifecycle.ParseTagKind(form.Value("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	var id uint64
	if v := form.Value("id"); v != "" {
		if id, err = strconv.ParseUint(v, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, BadIDResponse)
			return
		}
	}
	respond(c, h.Service.SaveTag(c.Request.Context(), kind, id, form.Value("title"), form.Bool("important")))
}

func (h *Handlers) TagDelete(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	kind, err := lifecycle.ParseTagKind(form.Value("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	id, ok := idParam(c, form, "id")
	if !ok {
		return
	}
	respond(c, h.Service.DeleteTag(c.Request.Context(), kind, id))
}

func (h *Handlers) TagList(c *gin.Context, user *models.User) {
	kind, err := lifecycle.ParseTagKind(c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	tags, err := h.Service.ListTags(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, tags)
}
