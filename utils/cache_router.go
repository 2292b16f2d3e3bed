package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoCache = 0
	CacheCustom  = -1
)

// CacheControl sets cache-control for every response. CacheCustom leaves the
// header to the handlers.
func CacheControl(seconds int) gin.HandlerFunc {
	value := "no-cache"
	if seconds > 0 {
		value = "private, max-age=" + strconv.Itoa(seconds)
	}
	return func(c *gin.Context) {
		if seconds != CacheCustom {
			c.Header("cache-control", value)
		}
		c.Next()
	}
}
