package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"folio/assetstore"
	"folio/logging"
	"folio/models"
	"folio/processing"

	"gorm.io/gorm"
)

func heroURLs(h *models.HeroConfig) []string {
	return []string{h.DesktopVideoURL, h.MobileVideoURL, h.PosterURL, h.PhotoURL}
}

// GetHero returns the hero block, or an empty one when nothing was saved yet
func (s *Service) GetHero(ctx context.Context) (*models.HeroConfig, error) {
	var hero models.HeroConfig
	err := s.DB.WithContext(ctx).Order("id").First(&hero).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.HeroConfig{}, nil
	}
	return &hero, err
}

// saveHero keeps the table at a single row: the first row is updated when one exists
func saveHero(tx *gorm.DB, hero *models.HeroConfig) error {
	if hero.ID == 0 {
		var existing models.HeroConfig
		err := tx.Order("id").First(&existing).Error
		switch {
		case err == nil:
			hero.ID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(hero).Error
		default:
			return err
		}
	}
	return tx.Save(hero).Error
}

// UpdateHero uploads the submitted videos and photo, derives a poster when the
// desktop video changed (or on request) and saves the single hero row.
func (s *Service) UpdateHero(ctx context.Context, form *Form) Result {
	hero, err := s.GetHero(ctx)
	if err != nil {
		return failure(err, "Loading hero failed")
	}
	before := heroURLs(hero)

	desktop := form.File("desktop_video")
	mobile := form.File("mobile_video")
	photo := form.File("hero_photo")
	alt := form.Value("hero_alt")
	if (hero.PhotoURL != "" || photo != nil) && alt == "" {
		return failure(ErrAltRequired, "Cannot update hero")
	}

	uploaded := []string{}
	if desktop != nil {
		res, err := s.Assets.UploadVideo(ctx, desktop.Data, assetstore.UploadOptions{Folder: FolderHero})
		if err != nil {
			return failure(err, "Uploading desktop video failed")
		}
		hero.DesktopVideoURL = res.URL
		uploaded = append(uploaded, res.URL)
	}
	if mobile != nil {
		res, err := s.Assets.UploadVideo(ctx, mobile.Data, assetstore.UploadOptions{Folder: FolderHero})
		if err != nil {
			logOrphans("UpdateHero", uploaded...)
			return failure(err, "Uploading mobile video failed")
		}
		hero.MobileVideoURL = res.URL
		uploaded = append(uploaded, res.URL)
	}
	if photo != nil {
		res, err := s.Assets.UploadImage(ctx, photo.Data, assetstore.UploadOptions{Folder: FolderHero})
		if err != nil {
			logOrphans("UpdateHero", uploaded...)
			return failure(err, "Uploading hero photo failed")
		}
		hero.PhotoURL = res.URL
		uploaded = append(uploaded, res.URL)
	}
	hero.PhotoAlt = alt
	hero.Description = form.Value("description")
	hero.Location = form.Value("location")

	// the poster follows the desktop video, or the mobile one when there is no desktop video
	source := desktop
	if source == nil && hero.DesktopVideoURL == "" {
		source = mobile
	}
	if source != nil || form.Bool("regenerate_poster") {
		if poster, own := s.derivePoster(ctx, hero, source); poster != "" {
			hero.PosterURL = poster
			if own {
				uploaded = append(uploaded, poster)
			}
		}
	}

	if err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveHero(tx, hero)
	}); err != nil {
		logOrphans("UpdateHero", uploaded...)
		return failure(err, "Saving hero failed")
	}
	s.deleteSuperseded(ctx, "hero", before, heroURLs(hero))
	return succeed(hero.ID, "Hero updated")
}

// RegeneratePoster derives the poster from the stored video. Without force an
// existing poster is left alone.
func (s *Service) RegeneratePoster(ctx context.Context, force bool) Result {
	hero, err := s.GetHero(ctx)
	if err != nil {
		return failure(err, "Loading hero failed")
	}
	if hero.ID == 0 {
		return failure(ErrNotFound, "Cannot regenerate poster")
	}
	if hero.PosterURL != "" && !force {
		return succeed(hero.ID, "Poster already present")
	}
	previous := hero.PosterURL
	poster, _ := s.derivePoster(ctx, hero, nil)
	if poster == "" {
		return failure(processing.ErrFrameUnavailable, "Regenerating poster failed")
	}
	if err = s.DB.WithContext(ctx).Model(hero).Update("poster_url", poster).Error; err != nil {
		return failure(err, "Saving poster failed")
	}
	hero.PosterURL = poster
	s.deleteSuperseded(ctx, "hero poster", []string{previous}, heroURLs(hero))
	return succeed(hero.ID, "Poster regenerated")
}

// derivePoster prefers a validated frame URL of the stored video, then a frame
// extracted locally from the uploaded bytes. An empty result means the previous
// poster must be kept. own reports whether a new asset was uploaded for it.
func (s *Service) derivePoster(ctx context.Context, hero *models.HeroConfig, video *File) (poster string, own bool) {
	videoURL := hero.DesktopVideoURL
	if videoURL == "" {
		videoURL = hero.MobileVideoURL
	}
	if videoURL != "" && s.Posters != nil {
		frameURL, err := s.Posters.GenerateValidatedFrameURL(ctx, videoURL)
		if err == nil {
			return frameURL, false
		}
		logging.Warn("Remote poster frame for %s unavailable: %v", videoURL, err)
	}
	if video != nil && s.Frames != nil {
		url, err := s.uploadLocalFrame(ctx, video)
		if err == nil {
			return url, true
		}
		logging.Warn("Local poster frame failed: %v", err)
	}
	logging.Warn("Keeping the previous poster %q", hero.PosterURL)
	return "", false
}

func (s *Service) uploadLocalFrame(ctx context.Context, video *File) (string, error) {
	frame, err := s.Frames.ExtractFrame(ctx, video.Data)
	if err != nil {
		return "", err
	}
	res, err := s.Assets.UploadImage(ctx, frame.Data, assetstore.UploadOptions{Folder: FolderHero})
	if err != nil {
		return "", fmt.Errorf("upload frame: %w", err)
	}
	return res.URL, nil
}
