package assetstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"
	"time"

	"folio/metrics"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// ResolutionClass selects the server-side transformation applied on upload
type ResolutionClass string

const (
	ClassOriginal ResolutionClass = "" // untouched
	ClassHigh     ResolutionClass = "high"
	ClassLow      ResolutionClass = "low"
)

const (
	ResourceImage = "image"
	ResourceVideo = "video"

	deliveryFormat      = "webp"
	lowTransformation   = "c_limit,w_800,h_800,q_auto:low"
	videoTransformation = "q_auto"
)

var (
	ErrNotConfigured = errors.New("assetstore: credentials are not configured")
	ErrUploadFailed  = errors.New("assetstore: upload failed")
)

// remoteAPI is the part of the Cloudinary uploader we use
type remoteAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Config struct {
	CloudName  string
	APIKey     string
	APISecret  string
	RootFolder string // prefix for every public id we create
}

type UploadOptions struct {
	Class ResolutionClass
	// Folder under the root folder, e.g. "photos"
	Folder string
	// OriginalID ties high/low/original variants of one photo together by name
	OriginalID string
}

type UploadResult struct {
	URL          string
	PublicID     string
	ResourceType string
	Width        int
	Height       int
	Bytes        int
}

// Gateway is the only thing talking to the asset store's network API
type Gateway struct {
	api        remoteAPI
	rootFolder string
	compress   func([]byte) []byte
	now        func() time.Time
}

func NewGateway(cfg Config) (*Gateway, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("assetstore: %w", err)
	}
	return newGateway(&cld.Upload, cfg.RootFolder), nil
}

func newGateway(remote remoteAPI, rootFolder string) *Gateway {
	return &Gateway{
		api:        remote,
		rootFolder: strings.Trim(rootFolder, "/"),
		compress:   Compress,
		now:        time.Now,
	}
}

// NewBaseName returns a fresh timestamp + random suffix name
func (g *Gateway) NewBaseName() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d_%s", g.now().UnixMilli(), random[:10])
}

// baseOf strips folders and any class suffix from an identifier
func baseOf(originalID string) string {
	name := path.Base(originalID)
	for _, suffix := range []string{"_" + string(ClassHigh), "_" + string(ClassLow), "_original"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

func (g *Gateway) publicID(opts UploadOptions) string {
	name := g.NewBaseName()
	if opts.OriginalID != "" {
		suffix := string(opts.Class)
		if suffix == "" {
			suffix = "original"
		}
		name = baseOf(opts.OriginalID) + "_" + suffix
	}
	return path.Join(g.rootFolder, strings.Trim(opts.Folder, "/"), name)
}

// transformationFor builds the incoming transformation for a class. High is
// half of the intrinsic size, falling back to a relative width when the
// dimensions cannot be read locally.
func transformationFor(class ResolutionClass, data []byte) string {
	switch class {
	case ClassLow:
		return lowTransformation
	case ClassHigh:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err == nil && cfg.Width > 1 && cfg.Height > 1 {
			return fmt.Sprintf("c_scale,w_%d,h_%d,q_auto:eco", cfg.Width/2, cfg.Height/2)
		}
		return "c_scale,w_0.5,q_auto:eco"
	}
	return ""
}

func classLabel(class ResolutionClass) string {
	if class == ClassOriginal {
		return "original"
	}
	return string(class)
}

// UploadImage compresses oversized binaries locally, then uploads with the format
// directive and the class transformation. Originals are sent without either.
func (g *Gateway) UploadImage(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUploadFailed)
	}
	params := uploader.UploadParams{
		PublicID:     g.publicID(opts),
		ResourceType: ResourceImage,
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
	}
	if opts.Class != ClassOriginal {
		params.Format = deliveryFormat
		params.Transformation = transformationFor(opts.Class, data)
	}
	return g.upload(ctx, g.compress(data), params, classLabel(opts.Class))
}

// UploadVideo passes the binary through; the store normalises quality on ingest.
func (g *Gateway) UploadVideo(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty video", ErrUploadFailed)
	}
	params := uploader.UploadParams{
		PublicID:       g.publicID(opts),
		ResourceType:   ResourceVideo,
		Transformation: videoTransformation,
		Overwrite:      api.Bool(true),
		Invalidate:     api.Bool(true),
	}
	return g.upload(ctx, data, params, classLabel(opts.Class))
}

func (g *Gateway) upload(ctx context.Context, data []byte, params uploader.UploadParams, class string) (*UploadResult, error) {
	start := time.Now()
	res, err := g.api.Upload(ctx, bytes.NewReader(data), params)
	if err == nil && res != nil && res.Error.Message != "" {
		err = errors.New(res.Error.Message)
	}
	if err == nil && (res == nil || res.SecureURL == "") {
		err = errors.New("no URL in response")
	}
	metrics.ObserveUpload(params.ResourceType, class, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUploadFailed, params.ResourceType, params.PublicID, err)
	}
	return &UploadResult{
		URL:          res.SecureURL,
		PublicID:     res.PublicID,
		ResourceType: params.ResourceType,
		Width:        res.Width,
		Height:       res.Height,
		Bytes:        res.Bytes,
	}, nil
}
