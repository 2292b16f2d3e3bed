package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		seconds int
		want    string
	}{
		{CacheNoCache, "no-cache"},
		{60, "private, max-age=60"},
		{CacheCustom, ""},
	}
	for _, tt := range tests {
		router := gin.New()
		router.Use(CacheControl(tt.seconds))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tt.want, w.Header().Get("Cache-Control"))
	}
}
