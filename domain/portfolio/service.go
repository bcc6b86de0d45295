package portfolio

import (
	"context"

	"github.com/google/uuid"

	"github.com/tirzah-studio/site-api/domain/content"
	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/upload"
)

type Service struct {
	store Store
	files content.Files
	log   logger.Logger
}

func NewService(store Store, files content.Files, log logger.Logger) *Service {
	return &Service{store: store, files: files, log: log.WithComponent("portfolio")}
}

// List returns items newest first, optionally filtered by active flag.
func (s *Service) List(ctx context.Context, active *bool) ([]Item, error) {
	items, err := s.store.List(ctx, active)
	if err != nil {
		return nil, content.StoreError(Kind, err)
	}
	if items == nil {
		items = []Item{}
	}
	for i := range items {
		s.hideMissing(ctx, &items[i])
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	it, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.hideMissing(ctx, it)
	return it, nil
}

func (s *Service) hideMissing(ctx context.Context, it *Item) {
	log := s.log.WithContext(ctx)
	it.MediaSrc = content.Visible(s.files, log, it.MediaSrc)
	it.VideoSrc = content.VisiblePtr(s.files, log, it.VideoSrc)
}

func (s *Service) load(ctx context.Context, id string) (*Item, error) {
	if !content.ValidID(id) {
		return nil, content.NotFound(Kind)
	}
	it, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, content.StoreError(Kind, err)
	}
	return it, nil
}

func validMediaType(mt string) bool {
	return mt == MediaImage || mt == MediaVideo
}

func (s *Service) Create(ctx context.Context, form *content.Form) (*Item, error) {
	log := s.log.WithContext(ctx)

	it := &Item{
		ID:          uuid.NewString(),
		Title:       form.Required("title"),
		Category:    form.Required("category"),
		MediaType:   form.Required("mediaType"),
		Description: form.Required("description"),
		Link:        form.Optional("link", nil),
		Background:  form.Optional("background", nil),
		IsActive:    true,
	}
	if it.Title == "" || it.Category == "" || it.MediaType == "" || it.Description == "" {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Missing required fields")
	}
	if !validMediaType(it.MediaType) {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "mediaType must be image or video")
	}
	media := form.File(upload.PortfolioMedia.Field)
	if media == nil {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingFile, "Media file is required")
	}
	it.Services = content.JSONValue[[]content.Entry](form, "services", log).Resolve(nil)
	it.Achievements = content.JSONValue[[]content.Entry](form, "achievements", log).Resolve(nil)
	it.Stats = content.JSONValue[*content.Stats](form, "stats", log).Resolve(nil)

	stage := content.NewStaging(s.files, log)
	mediaSrc, err := stage.Save(upload.PortfolioMedia, media)
	if err != nil {
		return nil, err
	}
	it.MediaSrc = mediaSrc
	videoSrc, err := stage.Save(upload.PortfolioVideo, form.File(upload.PortfolioVideo.Field))
	if err != nil {
		stage.Rollback()
		return nil, err
	}
	if videoSrc != "" {
		it.VideoSrc = &videoSrc
	}

	if err := s.store.Create(ctx, it); err != nil {
		stage.Rollback()
		return nil, content.StoreError(Kind, err)
	}

	log.Info("Portfolio item created", logger.RecordID(it.ID))
	return it, nil
}

func (s *Service) Update(ctx context.Context, id string, form *content.Form) (*Item, error) {
	log := s.log.WithContext(ctx)

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Title = form.Keep("title", current.Title)
	updated.Category = form.Keep("category", current.Category)
	updated.MediaType = form.Keep("mediaType", current.MediaType)
	updated.Description = form.Keep("description", current.Description)
	updated.Link = form.Optional("link", current.Link)
	updated.Background = form.Optional("background", current.Background)
	updated.Services = content.JSONValue[[]content.Entry](form, "services", log).Resolve(current.Services)
	updated.Achievements = content.JSONValue[[]content.Entry](form, "achievements", log).Resolve(current.Achievements)
	updated.Stats = content.JSONValue[*content.Stats](form, "stats", log).Resolve(current.Stats)
	if !validMediaType(updated.MediaType) {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "mediaType must be image or video")
	}
	if active, ok, err := form.Bool("isActive"); err != nil {
		return nil, err
	} else if ok {
		updated.IsActive = active
	}

	stage := content.NewStaging(s.files, log)
	mediaSrc, err := stage.Save(upload.PortfolioMedia, form.File(upload.PortfolioMedia.Field))
	if err != nil {
		return nil, err
	}
	if mediaSrc != "" {
		updated.MediaSrc = mediaSrc
	}
	videoSrc, err := stage.Save(upload.PortfolioVideo, form.File(upload.PortfolioVideo.Field))
	if err != nil {
		stage.Rollback()
		return nil, err
	}
	if videoSrc != "" {
		updated.VideoSrc = &videoSrc
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		if len(stage.Saved()) > 0 {
			log.Error("Portfolio update failed after upload, discarding new files", err,
				logger.RecordID(id),
				logger.Any("new_files", stage.Saved()),
				logger.String("current_media", current.MediaSrc),
				logger.String("current_video", current.videoPath()),
			)
		}
		stage.Rollback()
		return nil, content.StoreError(Kind, err)
	}

	content.Discard(s.files, log,
		content.Replaced(current.MediaSrc, updated.MediaSrc),
		content.Replaced(current.videoPath(), updated.videoPath()),
	)
	log.Info("Portfolio item updated", logger.RecordID(id))
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	log := s.log.WithContext(ctx)

	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	removed := []string{current.MediaSrc, current.videoPath()}
	content.Discard(s.files, log, removed...)
	if err := s.store.Delete(ctx, id); err != nil {
		log.Error("Portfolio delete failed after files were removed, record references missing files", err,
			logger.RecordID(id),
			logger.Any("removed_files", removed),
		)
		return content.StoreError(Kind, err)
	}

	log.Info("Portfolio item deleted", logger.RecordID(id))
	return nil
}
