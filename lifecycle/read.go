package lifecycle

import (
	"context"
	"errors"

	"folio/models"

	"gorm.io/gorm"
)

type PhotoView struct {
	models.Photo
	TagIDs       []uint64 `json:"tag_ids"`
	SearchTagIDs []uint64 `json:"search_tag_ids"`
	AlbumIDs     []uint64 `json:"album_ids"`
}

type AlbumView struct {
	models.Album
	TagIDs   []uint64 `json:"tag_ids"`
	PhotoIDs []uint64 `json:"photo_ids"`
}

type link struct {
	Owner  uint64
	Target uint64
}

// linksBy loads owner -> targets for a link table
func linksBy(tx *gorm.DB, model any, ownerColumn, targetColumn, order string, owners []uint64) (map[uint64][]uint64, error) {
	result := map[uint64][]uint64{}
	if len(owners) == 0 {
		return result, nil
	}
	var rows []link
	err := tx.Model(model).
		Select(ownerColumn+" AS owner, "+targetColumn+" AS target").
		Where(ownerColumn+" IN ?", owners).
		Order(order).
		Scan(&rows).Error
	for _, row := range rows {
		result[row.Owner] = append(result[row.Owner], row.Target)
	}
	return result, err
}

func orEmpty(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}

// ListPhotos returns photos newest first with their links
func (s *Service) ListPhotos(ctx context.Context) ([]PhotoView, error) {
	tx := s.DB.WithContext(ctx)
	var photos []models.Photo
	if err := tx.Order("date DESC, id DESC").Find(&photos).Error; err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(photos))
	for _, p := range photos {
		ids = append(ids, p.ID)
	}
	tags, err := linksBy(tx, &models.PhotoTag{}, "photo_id", "tag_id", "tag_id", ids)
	if err != nil {
		return nil, err
	}
	searchTags, err := linksBy(tx, &models.PhotoSearchTag{}, "photo_id", "search_tag_id", "search_tag_id", ids)
	if err != nil {
		return nil, err
	}
	albums, err := linksBy(tx, &models.AlbumPhoto{}, "photo_id", "album_id", "album_id", ids)
	if err != nil {
		return nil, err
	}
	result := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		result = append(result, PhotoView{
			Photo:        p,
			TagIDs:       orEmpty(tags[p.ID]),
			SearchTagIDs: orEmpty(searchTags[p.ID]),
			AlbumIDs:     orEmpty(albums[p.ID]),
		})
	}
	return result, nil
}

func (s *Service) ListAlbums(ctx context.Context) ([]AlbumView, error) {
	tx := s.DB.WithContext(ctx)
	var albums []models.Album
	if err := tx.Order("date DESC, id DESC").Find(&albums).Error; err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(albums))
	for _, a := range albums {
		ids = append(ids, a.ID)
	}
	tags, err := linksBy(tx, &models.AlbumTag{}, "album_id", "tag_id", "tag_id", ids)
	if err != nil {
		return nil, err
	}
	photos, err := linksBy(tx, &models.AlbumPhoto{}, "album_id", "photo_id", "position, photo_id", ids)
	if err != nil {
		return nil, err
	}
	result := make([]AlbumView, 0, len(albums))
	for _, a := range albums {
		result = append(result, AlbumView{Album: a, TagIDs: orEmpty(tags[a.ID]), PhotoIDs: orEmpty(photos[a.ID])})
	}
	return result, nil
}

// AlbumPhotos lists the members of an album by position
func (s *Service) AlbumPhotos(ctx context.Context, albumID uint64) ([]models.Photo, error) {
	tx := s.DB.WithContext(ctx)
	if err := tx.First(&models.Album{}, albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	photos := []models.Photo{}
	err := tx.Joins("JOIN album_photos ON album_photos.photo_id = photos.id").
		Where("album_photos.album_id = ?", albumID).
		Order("album_photos.position, photos.id").
		Find(&photos).Error
	return photos, err
}
