package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"folio/models"

	"gorm.io/gorm"
)

type TagKind string

const (
	KindTag    TagKind = "tag"
	KindSearch TagKind = "search"
)

var ErrUnknownTagKind = errors.New("unknown tag kind")

func ParseTagKind(s string) (TagKind, error) {
	switch TagKind(s) {
	case KindTag, "":
		return KindTag, nil
	case KindSearch:
		return KindSearch, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTagKind, s)
}

// SaveTag creates the tag when id is 0, otherwise renames it in place
func (s *Service) SaveTag(ctx context.Context, kind TagKind, id uint64, title string, important bool) Result {
	if title == "" {
		return failure(ErrTitleRequired, "Cannot save %s", kind)
	}
	tx := s.DB.WithContext(ctx)
	var err error
	switch kind {
	case KindTag:
		tag := models.Tag{ID: id, Title: title, Important: important}
		err = saveTag(tx, &tag, id)
		id = tag.ID
	case KindSearch:
		tag := models.SearchTag{ID: id, Title: title, Important: important}
		err = saveTag(tx, &tag, id)
		id = tag.ID
	default:
		err = ErrUnknownTagKind
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrNotFound
		}
		return failure(err, "Saving %s %q failed", kind, title)
	}
	return succeed(id, "Tag saved")
}

func saveTag[T models.Tag | models.SearchTag](tx *gorm.DB, tag *T, id uint64) error {
	if id == 0 {
		return tx.Create(tag).Error
	}
	var existing T
	if err := tx.First(&existing, id).Error; err != nil {
		return err
	}
	return tx.Model(tag).Select("title", "important").Updates(tag).Error
}

// DeleteTag removes the tag and its links to photos and albums
func (s *Service) DeleteTag(ctx context.Context, kind TagKind, id uint64) Result {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		switch kind {
		case KindTag:
			if err := tx.Where("tag_id = ?", id).Delete(&models.PhotoTag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tag_id = ?", id).Delete(&models.AlbumTag{}).Error; err != nil {
				return err
			}
			res = tx.Delete(&models.Tag{}, id)
		case KindSearch:
			if err := tx.Where("search_tag_id = ?", id).Delete(&models.PhotoSearchTag{}).Error; err != nil {
				return err
			}
			res = tx.Delete(&models.SearchTag{}, id)
		default:
			return ErrUnknownTagKind
		}
		if res.Error == nil && res.RowsAffected == 0 {
			return ErrNotFound
		}
		return res.Error
	})
	if err != nil {
		return failure(err, "Deleting %s %d failed", kind, id)
	}
	return succeed(id, "Tag deleted")
}

// ListTags returns either kind ordered by importance, then title
func (s *Service) ListTags(ctx context.Context, kind TagKind) (any, error) {
	tx := s.DB.WithContext(ctx).Order("important DESC, title")
	switch kind {
	case KindTag:
		tags := []models.Tag{}
		err := tx.Find(&tags).Error
		return tags, err
	case KindSearch:
		tags := []models.SearchTag{}
		err := tx.Find(&tags).Error
		return tags, err
	}
	return nil, ErrUnknownTagKind
}
