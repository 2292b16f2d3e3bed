package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"

	"folio/assetstore"
	"folio/logging"
	"folio/models"
	"folio/storage"
	"folio/utils"

	"gorm.io/gorm"
)

// photoAssets are the freshly uploaded variants of one image
type photoAssets struct {
	HighURL     string
	LowURL      string
	OriginalURL string
	Width       int
	Height      int
}

func (a *photoAssets) urls() []string {
	return []string{a.HighURL, a.LowURL, a.OriginalURL}
}

// uploadPhoto stores the high and low variants and, when enabled, the
// untouched original. Only the high variant is mandatory.
func (s *Service) uploadPhoto(ctx context.Context, file *File) (*photoAssets, error) {
	base := s.Assets.NewBaseName()
	high, err := s.Assets.UploadImage(ctx, file.Data, assetstore.UploadOptions{
		Class: assetstore.ClassHigh, Folder: FolderPhotos, OriginalID: base,
	})
	if err != nil {
		return nil, err
	}
	result := &photoAssets{HighURL: high.URL, LowURL: high.URL}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Data)); err == nil {
		result.Width, result.Height = cfg.Width, cfg.Height
	}

	low, err := s.Assets.UploadImage(ctx, file.Data, assetstore.UploadOptions{
		Class: assetstore.ClassLow, Folder: FolderPhotos, OriginalID: base,
	})
	if err != nil {
		logging.Warn("Low resolution upload failed, reusing the high resolution URL: %v", err)
	} else {
		result.LowURL = low.URL
	}

	if s.StoreOriginals {
		original, err := s.Assets.UploadImage(ctx, file.Data, assetstore.UploadOptions{
			Class: assetstore.ClassOriginal, Folder: FolderPhotos, OriginalID: base,
		})
		if err != nil {
			logging.Warn("Storing the original of %s failed: %v", file.Name, err)
		} else {
			result.OriginalURL = original.URL
			s.archiveOriginal(ctx, original.PublicID, file)
		}
	}
	return result, nil
}

func (s *Service) archiveOriginal(ctx context.Context, publicID string, file *File) {
	if s.Archive == nil {
		return
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}
	key := storage.OriginalKey(publicID)
	if err := s.Archive.Save(ctx, key, file.Data, contentType); err != nil {
		logging.Warn("Archiving original %s failed: %v", key, err)
	}
}

func (s *Service) unarchiveOriginal(ctx context.Context, originalURL string) {
	if s.Archive == nil || originalURL == "" {
		return
	}
	publicID, ok := assetstore.ResolvePublicID(originalURL)
	if !ok {
		return
	}
	if err := s.Archive.Delete(ctx, storage.OriginalKey(publicID)); err != nil {
		logging.Warn("Removing archived original %s failed: %v", publicID, err)
	}
}

func applyPhotoMetadata(photo *models.Photo, form *Form) {
	photo.Alt = form.Value("alt")
	photo.Title = form.Value("title")
	photo.Date = utils.ParseDate(form.Value("date"))
	photo.IsVisible = form.Bool("is_visible")
	photo.MainCarousel = form.Bool("main_carousel")
	photo.PhotosCarousel = form.Bool("photos_carousel")
}

func writePhotoLinks(tx *gorm.DB, photoID uint64, form *Form) error {
	if err := replacePhotoTags(tx, photoID, form.IDs("tag_ids")); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if err := replacePhotoSearchTags(tx, photoID, form.IDs("search_tag_ids")); err != nil {
		return fmt.Errorf("search tags: %w", err)
	}
	if err := replacePhotoAlbums(tx, photoID, form.IDs("album_ids")); err != nil {
		return fmt.Errorf("albums: %w", err)
	}
	return nil
}

func (s *Service) CreatePhoto(ctx context.Context, form *Form) Result {
	file := form.File("image")
	if file == nil {
		return failure(ErrImageRequired, "Cannot create photo")
	}
	if form.Value("alt") == "" {
		return failure(ErrAltRequired, "Cannot create photo")
	}
	assets, err := s.uploadPhoto(ctx, file)
	if err != nil {
		return failure(err, "Uploading photo failed")
	}

	photo := models.Photo{
		HighURL:     assets.HighURL,
		LowURL:      assets.LowURL,
		OriginalURL: assets.OriginalURL,
		Width:       assets.Width,
		Height:      assets.Height,
	}
	applyPhotoMetadata(&photo, form)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&photo).Error; err != nil {
			return err
		}
		return writePhotoLinks(tx, photo.ID, form)
	})
	if err != nil {
		logOrphans("CreatePhoto", assets.urls()...)
		return failure(err, "Saving photo failed")
	}

	albums, err := albumsOfPhoto(s.DB.WithContext(ctx), photo.ID)
	if err != nil {
		logging.Warn("Cannot list albums of photo %d: %v", photo.ID, err)
	}
	s.regenerateCovers(ctx, albums)
	return succeed(photo.ID, "Photo created")
}

func (s *Service) UpdatePhoto(ctx context.Context, id uint64, form *Form) Result {
	var photo models.Photo
	if err := s.DB.WithContext(ctx).First(&photo, id).Error; err != nil {
		return notFoundOr(err, "photo %d", id)
	}
	before := photo.AssetURLs()
	prevAlbums, err := albumsOfPhoto(s.DB.WithContext(ctx), id)
	if err != nil {
		return failure(err, "Loading albums of photo %d failed", id)
	}

	file := form.File("image")
	if (photo.HighURL != "" || file != nil) && form.Value("alt") == "" {
		return failure(ErrAltRequired, "Cannot update photo %d", id)
	}
	var assets *photoAssets
	if file != nil {
		if assets, err = s.uploadPhoto(ctx, file); err != nil {
			return failure(err, "Uploading new image for photo %d failed", id)
		}
		photo.HighURL = assets.HighURL
		photo.LowURL = assets.LowURL
		photo.OriginalURL = assets.OriginalURL
		photo.Width, photo.Height = assets.Width, assets.Height
	}
	applyPhotoMetadata(&photo, form)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&photo).Error; err != nil {
			return err
		}
		return writePhotoLinks(tx, photo.ID, form)
	})
	if err != nil {
		if assets != nil {
			logOrphans("UpdatePhoto", assets.urls()...)
		}
		return failure(err, "Saving photo %d failed", id)
	}

	if assets != nil {
		s.deleteSuperseded(ctx, fmt.Sprintf("photo %d", id), before, photo.AssetURLs())
		if before[2] != photo.OriginalURL {
			s.unarchiveOriginal(ctx, before[2])
		}
	}
	newAlbums, err := albumsOfPhoto(s.DB.WithContext(ctx), id)
	if err != nil {
		logging.Warn("Cannot list albums of photo %d: %v", id, err)
	}
	if assets != nil {
		s.regenerateCovers(ctx, union(prevAlbums, newAlbums))
	} else {
		s.regenerateCovers(ctx, difference(prevAlbums, newAlbums))
	}
	return succeed(id, "Photo updated")
}

func (s *Service) DeletePhoto(ctx context.Context, id uint64) Result {
	var photo models.Photo
	if err := s.DB.WithContext(ctx).First(&photo, id).Error; err != nil {
		return notFoundOr(err, "photo %d", id)
	}
	prevAlbums, err := albumsOfPhoto(s.DB.WithContext(ctx), id)
	if err != nil {
		return failure(err, "Loading albums of photo %d failed", id)
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, link := range []any{&models.PhotoTag{}, &models.PhotoSearchTag{}, &models.AlbumPhoto{}} {
			if err := tx.Where("photo_id = ?", id).Delete(link).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Photo{}, id).Error
	})
	if err != nil {
		return failure(err, "Deleting photo %d failed", id)
	}
	s.deleteSuperseded(ctx, fmt.Sprintf("photo %d", id), photo.AssetURLs(), nil)
	s.unarchiveOriginal(ctx, photo.OriginalURL)
	s.regenerateCovers(ctx, prevAlbums)
	return succeed(id, "Photo deleted")
}

func notFoundOr(err error, format string, args ...any) Result {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return failure(ErrNotFound, "Loading %s failed", what)
	}
	return failure(err, "Loading %s failed", what)
}

// union keeps the order of a, then appends what only b has
func union(a, b []uint64) []uint64 {
	seen := map[uint64]bool{}
	result := []uint64{}
	for _, list := range [][]uint64{a, b} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				result = append(result, id)
			}
		}
	}
	return result
}

// difference returns ids present in exactly one of the lists
func difference(a, b []uint64) []uint64 {
	inA, inB := map[uint64]bool{}, map[uint64]bool{}
	for _, id := range a {
		inA[id] = true
	}
	for _, id := range b {
		inB[id] = true
	}
	result := []uint64{}
	for _, id := range union(a, b) {
		if inA[id] != inB[id] {
			result = append(result, id)
		}
	}
	return result
}
