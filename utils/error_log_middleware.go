package utils

import (
	"bytes"
	"net/http"

	"folio/logging"

	"github.com/gin-gonic/gin"
)

const maxLoggedBody = 2048

// bodyCapture keeps the first maxLoggedBody bytes written to the client
type bodyCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		w.body.Write(b[:min(room, len(b))])
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware logs failed responses with their body once the handler is done:
// 5xx at Warn, 4xx at Debug. Register it before gzip, it logs what the handler wrote.
func ErrorLogMiddleware(c *gin.Context) {
	capture := &bodyCapture{ResponseWriter: c.Writer}
	c.Writer = capture
	c.Next()

	status := capture.Status()
	if status < http.StatusBadRequest {
		return
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	if status >= http.StatusInternalServerError {
		logging.Warn("%s %s -> %d: %s", c.Request.Method, route, status, capture.body.String())
	} else {
		logging.Debug("%s %s -> %d: %s", c.Request.Method, route, status, capture.body.String())
	}
}
