package handlers

import (
	"errors"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"folio/assetstore"
	"folio/lifecycle"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

type Response struct {
	Error string `json:"error"`
}

var (
	OKResponse         = Response{}
	BadIDResponse      = Response{"invalid id"}
	DBErrorResponse    = Response{"DB error"}
	NotFoundResponse   = Response{"not found"}
	BadRequestResponse = Response{"bad request"}
)

// Free-text fields go through the strict policy, everything else is an id, flag or date
var textFields = map[string]bool{
	"alt":         true,
	"title":       true,
	"description": true,
	"location":    true,
	"hero_alt":    true,
}

// Handlers translates HTTP requests into lifecycle operations
type Handlers struct {
	Service        *lifecycle.Service
	MaxUploadBytes int64
	policy         *bluemonday.Policy
}

func New(service *lifecycle.Service, maxUploadMB int) *Handlers {
	return &Handlers{
		Service:        service,
		MaxUploadBytes: int64(maxUploadMB) << 20,
		policy:         bluemonday.StrictPolicy(),
	}
}

const maxSanitizePasses = 8

// sanitize returns plain text. The strict policy escapes entities, so the
// result is decoded and sanitized again until it stops changing: markup sent
// entity-encoded is stripped on the next pass.
func (h *Handlers) sanitize(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		clean := html.UnescapeString(h.policy.Sanitize(s))
		if clean == s {
			return clean
		}
		s = clean
	}
	return h.policy.Sanitize(s)
}

// bindForm reads the body and answers 400 itself when that fails
func (h *Handlers) bindForm(c *gin.Context) (*lifecycle.Form, bool) {
	form, err := h.readForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return nil, false
	}
	return form, true
}

// readForm decodes a multipart or urlencoded body into a lifecycle.Form.
// The body is capped at MaxUploadBytes before anything reads it.
func (h *Handlers) readForm(c *gin.Context) (*lifecycle.Form, error) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	// ParseMultipartForm hides urlencoded parse errors behind ErrNotMultipart
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	err := c.Request.ParseMultipartForm(32 << 20)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	form := lifecycle.NewForm()
	for key, values := range c.Request.PostForm {
		if textFields[key] {
			clean := make([]string, len(values))
			for i, v := range values {
				clean[i] = h.sanitize(v)
			}
			values = clean
		}
		form.Set(key, values...)
	}
	if c.Request.MultipartForm == nil {
		return form, nil
	}
	for key, headers := range c.Request.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		file, err := readFile(headers[0])
		if err != nil {
			return nil, err
		}
		form.SetFile(key, file)
	}
	return form, nil
}

func readFile(header *multipart.FileHeader) (*lifecycle.File, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &lifecycle.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// idParam reads a positive id from the query string or the decoded form
func idParam(c *gin.Context, form *lifecycle.Form, name string) (uint64, bool) {
	v := c.Query(name)
	if v == "" {
		v = form.Value(name)
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, BadIDResponse)
		return 0, false
	}
	return id, true
}

func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrAltRequired),
		errors.Is(err, lifecycle.ErrImageRequired),
		errors.Is(err, lifecycle.ErrTitleRequired),
		errors.Is(err, lifecycle.ErrUnknownTagKind),
		errors.Is(err, assetstore.ErrMissingUploadAnchor):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(c *gin.Context, result lifecycle.Result) {
	if result.Success {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(statusOf(result.Err), result)
}
