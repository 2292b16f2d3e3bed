package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"folio/assetstore"
	"folio/logging"
	"folio/metrics"
	"folio/models"
	"folio/processing"
	"folio/utils"

	"gorm.io/gorm"
)

func applyAlbumMetadata(album *models.Album, form *Form) {
	album.Title = form.Value("title")
	album.Date = utils.ParseDate(form.Value("date"))
	album.IsVisible = form.Bool("is_visible")
}

func (s *Service) CreateAlbum(ctx context.Context, form *Form) Result {
	if form.Value("title") == "" {
		return failure(ErrTitleRequired, "Cannot create album")
	}
	var album models.Album
	applyAlbumMetadata(&album, form)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&album).Error; err != nil {
			return err
		}
		if err := replaceAlbumTags(tx, album.ID, form.IDs("tag_ids")); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		if err := replaceAlbumPhotos(tx, album.ID, form.IDs("photo_ids")); err != nil {
			return fmt.Errorf("photos: %w", err)
		}
		return nil
	})
	if err != nil {
		return failure(err, "Saving album failed")
	}
	s.regenerateCovers(ctx, []uint64{album.ID})
	return succeed(album.ID, "Album created")
}

func (s *Service) UpdateAlbum(ctx context.Context, id uint64, form *Form) Result {
	if form.Value("title") == "" {
		return failure(ErrTitleRequired, "Cannot update album %d", id)
	}
	var album models.Album
	if err := s.DB.WithContext(ctx).First(&album, id).Error; err != nil {
		return notFoundOr(err, "album %d", id)
	}
	before, err := photosOfAlbum(s.DB.WithContext(ctx), id)
	if err != nil {
		return failure(err, "Loading photos of album %d failed", id)
	}
	applyAlbumMetadata(&album, form)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the cover is owned by regenerateCover
		if err := tx.Model(&album).Select("title", "date", "is_visible").Updates(&album).Error; err != nil {
			return err
		}
		if err := replaceAlbumTags(tx, id, form.IDs("tag_ids")); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		if err := replaceAlbumPhotos(tx, id, form.IDs("photo_ids")); err != nil {
			return fmt.Errorf("photos: %w", err)
		}
		return nil
	})
	if err != nil {
		return failure(err, "Saving album %d failed", id)
	}
	after, err := photosOfAlbum(s.DB.WithContext(ctx), id)
	if err != nil {
		logging.Warn("Cannot list photos of album %d: %v", id, err)
	}
	if !slices.Equal(before, after) {
		s.regenerateCovers(ctx, []uint64{id})
	}
	return succeed(id, "Album updated")
}

// ReorderAlbum sets positions from photoIDs; photos not in the album are ignored
// and members missing from the list keep their relative order after the listed ones.
func (s *Service) ReorderAlbum(ctx context.Context, id uint64, photoIDs []uint64) Result {
	var album models.Album
	if err := s.DB.WithContext(ctx).First(&album, id).Error; err != nil {
		return notFoundOr(err, "album %d", id)
	}
	before, err := photosOfAlbum(s.DB.WithContext(ctx), id)
	if err != nil {
		return failure(err, "Loading photos of album %d failed", id)
	}
	members := map[uint64]bool{}
	for _, photoID := range before {
		members[photoID] = true
	}
	order := []uint64{}
	for _, photoID := range union(photoIDs, before) {
		if members[photoID] {
			order = append(order, photoID)
		}
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, photoID := range order {
			err := tx.Model(&models.AlbumPhoto{}).
				Where("album_id = ? AND photo_id = ?", id, photoID).
				Update("position", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return failure(err, "Reordering album %d failed", id)
	}
	if !slices.Equal(before, order) {
		s.regenerateCovers(ctx, []uint64{id})
	}
	return succeed(id, "Album reordered")
}

func (s *Service) DeleteAlbum(ctx context.Context, id uint64) Result {
	var album models.Album
	if err := s.DB.WithContext(ctx).First(&album, id).Error; err != nil {
		return notFoundOr(err, "album %d", id)
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, link := range []any{&models.AlbumTag{}, &models.AlbumPhoto{}} {
			if err := tx.Where("album_id = ?", id).Delete(link).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Album{}, id).Error
	})
	if err != nil {
		return failure(err, "Deleting album %d failed", id)
	}
	s.deleteSuperseded(ctx, fmt.Sprintf("album %d", id), []string{album.CoverURL}, nil)
	return succeed(id, "Album deleted")
}

// RegenerateAlbumCover rebuilds one album's cover outside of a mutation
func (s *Service) RegenerateAlbumCover(ctx context.Context, id uint64) Result {
	if err := s.regenerateCover(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(ErrNotFound, "Regenerating cover of album %d failed", id)
		}
		return failure(err, "Regenerating cover of album %d failed", id)
	}
	return succeed(id, "Cover regenerated")
}

// RegenerateAllCovers walks every album; failures are counted, not fatal
func (s *Service) RegenerateAllCovers(ctx context.Context) (done int, err error) {
	var ids []uint64
	if err = s.DB.WithContext(ctx).Model(&models.Album{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	var errs []error
	for _, id := range ids {
		if err := s.regenerateCover(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("album %d: %w", id, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

// regenerateCovers is the mandatory step after any membership change.
// A failed album keeps its previous cover and is logged.
func (s *Service) regenerateCovers(ctx context.Context, albumIDs []uint64) {
	ids := slices.Clone(albumIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := s.regenerateCover(ctx, id); err != nil {
			logging.Warn("Cover of album %d is stale: %v", id, err)
		}
	}
}

func (s *Service) coverSources(tx *gorm.DB, albumID uint64) ([]string, error) {
	urls := []string{}
	err := tx.Model(&models.AlbumPhoto{}).
		Joins("JOIN photos ON photos.id = album_photos.photo_id").
		Where("album_photos.album_id = ? AND photos.high_url <> ''", albumID).
		Order("album_photos.position, album_photos.photo_id").
		Limit(processing.MaxCoverPhotos).
		Pluck("photos.high_url", &urls).Error
	return urls, err
}

// regenerateCover writes the new cover before the old one is deleted.
// An album without photos gets its cover cleared.
func (s *Service) regenerateCover(ctx context.Context, albumID uint64) (err error) {
	defer func() {
		metrics.CoverGenerationsTotal.WithLabelValues(metrics.Status(err)).Inc()
	}()
	tx := s.DB.WithContext(ctx)
	var album models.Album
	if err = tx.First(&album, albumID).Error; err != nil {
		return err
	}
	sources, err := s.coverSources(tx, albumID)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		if album.CoverURL == "" {
			return nil
		}
		if err = tx.Model(&album).Update("cover_url", "").Error; err != nil {
			return err
		}
		logging.Info("Album %d has no photos, cover cleared", albumID)
		s.deleteSuperseded(ctx, fmt.Sprintf("album %d cover", albumID), []string{album.CoverURL}, nil)
		return nil
	}

	data, err := s.Covers.Compose(ctx, sources)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	uploaded, err := s.Assets.UploadImage(ctx, data, assetstore.UploadOptions{Folder: FolderAlbums})
	if err != nil {
		return err
	}
	if err = tx.Model(&album).Update("cover_url", uploaded.URL).Error; err != nil {
		logOrphans(fmt.Sprintf("album %d cover", albumID), uploaded.URL)
		return err
	}
	s.deleteSuperseded(ctx, fmt.Sprintf("album %d cover", albumID), []string{album.CoverURL}, []string{uploaded.URL})
	logging.Info("Album %d cover regenerated from %d photos", albumID, len(sources))
	return nil
}
