// Package lifecycle owns every mutation of photos, albums and the hero block.
// Uploads happen first, then the catalog write, and only after it commits are
// superseded assets removed from the asset store.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"folio/assetstore"
	"folio/logging"
	"folio/processing"
	"folio/storage"

	"gorm.io/gorm"
)

const (
	FolderPhotos = "photos"
	FolderAlbums = "albums"
	FolderHero   = "hero"
)

var (
	ErrAltRequired   = errors.New("alt text is required when a photo is present")
	ErrImageRequired = errors.New("an image file is required")
	ErrTitleRequired = errors.New("a title is required")
	ErrNotFound      = errors.New("not found")
)

type AssetGateway interface {
	NewBaseName() string
	UploadImage(ctx context.Context, data []byte, opts assetstore.UploadOptions) (*assetstore.UploadResult, error)
	UploadVideo(ctx context.Context, data []byte, opts assetstore.UploadOptions) (*assetstore.UploadResult, error)
	DeleteAll(ctx context.Context, publicIDs []string) assetstore.DeleteReport
}

type CoverComposer interface {
	Compose(ctx context.Context, urls []string) ([]byte, error)
}

type PosterSource interface {
	GenerateValidatedFrameURL(ctx context.Context, videoURL string) (string, error)
}

type FrameExtractor interface {
	ExtractFrame(ctx context.Context, video []byte) (*processing.Frame, error)
}

type Service struct {
	DB      *gorm.DB
	Assets  AssetGateway
	Covers  CoverComposer
	Posters PosterSource
	Frames  FrameExtractor
	// Archive is optional; originals are only mirrored when it is set
	Archive        storage.Archive
	StoreOriginals bool
}

// Result is what the dashboard gets back from every mutation
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      uint64 `json:"id,omitempty"`
	Err     error  `json:"-"`
}

func succeed(id uint64, format string, args ...any) Result {
	return Result{Success: true, ID: id, Message: fmt.Sprintf(format, args...)}
}

func failure(err error, format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	logging.Error("%s: %v", msg, err)
	return Result{Success: false, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

// publicIDs resolves URLs, skipping empty and foreign ones
func publicIDs(urls ...string) []string {
	ids := []string{}
	for _, u := range urls {
		if id, ok := assetstore.ResolvePublicID(u); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// supersededIDs returns the public ids referenced before a mutation and not after it.
// Derived URLs (e.g. a poster frame of a video) resolve to their source's id.
func supersededIDs(before, after []string) []string {
	kept := map[string]bool{}
	for _, id := range publicIDs(after...) {
		kept[id] = true
	}
	result := []string{}
	seen := map[string]bool{}
	for _, id := range publicIDs(before...) {
		if kept[id] || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// deleteSuperseded runs after the catalog commit and never fails the operation
func (s *Service) deleteSuperseded(ctx context.Context, what string, before, after []string) {
	ids := supersededIDs(before, after)
	if len(ids) == 0 {
		return
	}
	report := s.Assets.DeleteAll(ctx, ids)
	for _, failed := range report.Failed() {
		logging.Warn("%s: superseded asset %s left in the store: %v", what, failed.PublicID, failed.Err)
	}
	logging.Debug("%s: deleted %d of %d superseded assets", what, report.DeletedCount(), len(ids))
}

// logOrphans records uploads no catalog row points to. They are not removed here:
// nothing is deleted when the write path failed.
func logOrphans(what string, urls ...string) {
	ids := publicIDs(urls...)
	if len(ids) > 0 {
		logging.Warn("%s: orphaned uploads in the asset store: %s", what, strings.Join(ids, ", "))
	}
}
