package lifecycle

import (
	"folio/models"

	"gorm.io/gorm"
)

// Link tables are never diffed: the rows of an entity are deleted and the
// submitted set is inserted again, inside the caller's transaction.

// existingIDs keeps the ids that exist in table, in request order
func existingIDs(tx *gorm.DB, model any, ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return []uint64{}, nil
	}
	var found []uint64
	if err := tx.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	present := map[uint64]bool{}
	for _, id := range found {
		present[id] = true
	}
	result := []uint64{}
	for _, id := range ids {
		if present[id] {
			result = append(result, id)
		}
	}
	return result, nil
}

func replacePhotoTags(tx *gorm.DB, photoID uint64, tagIDs []uint64) error {
	if err := tx.Where("photo_id = ?", photoID).Delete(&models.PhotoTag{}).Error; err != nil {
		return err
	}
	tagIDs, err := existingIDs(tx, &models.Tag{}, tagIDs)
	if err != nil || len(tagIDs) == 0 {
		return err
	}
	links := make([]models.PhotoTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, models.PhotoTag{PhotoID: photoID, TagID: id})
	}
	return tx.Omit("Photo", "Tag").Create(&links).Error
}

func replacePhotoSearchTags(tx *gorm.DB, photoID uint64, tagIDs []uint64) error {
	if err := tx.Where("photo_id = ?", photoID).Delete(&models.PhotoSearchTag{}).Error; err != nil {
		return err
	}
	tagIDs, err := existingIDs(tx, &models.SearchTag{}, tagIDs)
	if err != nil || len(tagIDs) == 0 {
		return err
	}
	links := make([]models.PhotoSearchTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, models.PhotoSearchTag{PhotoID: photoID, SearchTagID: id})
	}
	return tx.Omit("Photo", "SearchTag").Create(&links).Error
}

func replaceAlbumTags(tx *gorm.DB, albumID uint64, tagIDs []uint64) error {
	if err := tx.Where("album_id = ?", albumID).Delete(&models.AlbumTag{}).Error; err != nil {
		return err
	}
	tagIDs, err := existingIDs(tx, &models.Tag{}, tagIDs)
	if err != nil || len(tagIDs) == 0 {
		return err
	}
	links := make([]models.AlbumTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, models.AlbumTag{AlbumID: albumID, TagID: id})
	}
	return tx.Omit("Album", "Tag").Create(&links).Error
}

// replacePhotoAlbums recreates the memberships of one photo. Albums the photo
// was already in keep their position, new ones append it at the end.
func replacePhotoAlbums(tx *gorm.DB, photoID uint64, albumIDs []uint64) error {
	var previous []models.AlbumPhoto
	if err := tx.Where("photo_id = ?", photoID).Find(&previous).Error; err != nil {
		return err
	}
	positions := map[uint64]int{}
	for _, link := range previous {
		positions[link.AlbumID] = link.Position
	}
	if err := tx.Where("photo_id = ?", photoID).Delete(&models.AlbumPhoto{}).Error; err != nil {
		return err
	}
	albumIDs, err := existingIDs(tx, &models.Album{}, albumIDs)
	if err != nil {
		return err
	}
	for _, albumID := range albumIDs {
		position, ok := positions[albumID]
		if !ok {
			if position, err = nextPosition(tx, albumID); err != nil {
				return err
			}
		}
		link := models.AlbumPhoto{AlbumID: albumID, PhotoID: photoID, Position: position}
		if err = tx.Omit("Album", "Photo").Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

func nextPosition(tx *gorm.DB, albumID uint64) (int, error) {
	var max int
	err := tx.Model(&models.AlbumPhoto{}).
		Where("album_id = ?", albumID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max + 1, err
}

// replaceAlbumPhotos recreates the member list of an album; order is position
func replaceAlbumPhotos(tx *gorm.DB, albumID uint64, photoIDs []uint64) error {
	if err := tx.Where("album_id = ?", albumID).Delete(&models.AlbumPhoto{}).Error; err != nil {
		return err
	}
	photoIDs, err := existingIDs(tx, &models.Photo{}, photoIDs)
	if err != nil || len(photoIDs) == 0 {
		return err
	}
	links := make([]models.AlbumPhoto, 0, len(photoIDs))
	for i, id := range photoIDs {
		links = append(links, models.AlbumPhoto{AlbumID: albumID, PhotoID: id, Position: i + 1})
	}
	return tx.Omit("Album", "Photo").Create(&links).Error
}

// albumsOfPhoto lists the album ids a photo belongs to
func albumsOfPhoto(tx *gorm.DB, photoID uint64) ([]uint64, error) {
	ids := []uint64{}
	err := tx.Model(&models.AlbumPhoto{}).Where("photo_id = ?", photoID).Order("album_id").Pluck("album_id", &ids).Error
	return ids, err
}

// photosOfAlbum lists member photo ids by position
func photosOfAlbum(tx *gorm.DB, albumID uint64) ([]uint64, error) {
	ids := []uint64{}
	err := tx.Model(&models.AlbumPhoto{}).Where("album_id = ?", albumID).Order("position, photo_id").Pluck("photo_id", &ids).Error
	return ids, err
}
