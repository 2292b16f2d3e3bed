package handlers

import (
	"net/http"

	"folio/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) HeroGet(c *gin.Context, user *models.User) {
	hero, err := h.Service.GetHero(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, hero)
}

func (h *Handlers) HeroUpdate(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	respond(c, h.Service.UpdateHero(c.Request.Context(), form))
}

func (h *Handlers) HeroPoster(c *gin.Context, user *models.User) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	respond(c, h.Service.RegeneratePoster(c.Request.Context(), form.Bool("force")))
}
