package assetstore

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var ErrMissingUploadAnchor = errors.New("assetstore: URL has no /upload/ segment")

// TransformURL builds delivery URLs with an inline transformation segment placed
// right after /upload/, e.g. .../video/upload/so_0,w_1280,c_limit/v1/folder/id.jpg
type TransformURL struct {
	prefix string // everything up to and including /upload/
	rest   string // version + folders + file name, no query
	params []string
	format string
}

// NewTransformURL fails fast on URLs the asset store did not produce.
func NewTransformURL(base string) (*TransformURL, error) {
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	i := strings.Index(base, uploadAnchor)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingUploadAnchor, base)
	}
	rest := strings.TrimLeft(base[i+len(uploadAnchor):], "/")
	if rest == "" {
		return nil, fmt.Errorf("%w: %q has nothing after it", ErrMissingUploadAnchor, base)
	}
	return &TransformURL{
		prefix: base[:i+len(uploadAnchor)],
		rest:   rest,
	}, nil
}

// With appends a key_value transformation token. Empty values are ignored.
func (t *TransformURL) With(key, value string) *TransformURL {
	if key != "" && value != "" {
		t.params = append(t.params, key+"_"+value)
	}
	return t
}

// Format replaces the file extension so the store converts on delivery.
func (t *TransformURL) Format(ext string) *TransformURL {
	t.format = strings.TrimPrefix(ext, ".")
	return t
}

func (t *TransformURL) String() string {
	rest := t.rest
	if t.format != "" {
		dir, file := path.Split(rest)
		if dot := strings.LastIndex(file, "."); dot > 0 {
			file = file[:dot]
		}
		rest = dir + file + "." + t.format
	}
	if len(t.params) == 0 {
		return t.prefix + rest
	}
	return t.prefix + strings.Join(t.params, ",") + "/" + rest
}
