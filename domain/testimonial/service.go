package testimonial

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
	return &Service{store: store, files: files, log: log.WithComponent("testimonial")}
}

// List returns active testimonials in display order.
func (s *Service) List(ctx context.Context) ([]Testimonial, error) {
	log := s.log.WithContext(ctx)

	items, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, content.StoreError(Kind, err)
	}
	if items == nil {
		items = []Testimonial{}
	}
	for i := range items {
		items[i].Logo = content.VisiblePtr(s.files, log, items[i].Logo)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Testimonial, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Logo = content.VisiblePtr(s.files, s.log.WithContext(ctx), t.Logo)
	return t, nil
}

func (s *Service) load(ctx context.Context, id string) (*Testimonial, error) {
	if !content.ValidID(id) {
		return nil, content.NotFound(Kind)
	}
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, content.StoreError(Kind, err)
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, form *content.Form) (*Testimonial, error) {
	log := s.log.WithContext(ctx)

	t := &Testimonial{
		ID:           uuid.NewString(),
		Name:         form.Required("name"),
		Role:         form.Required("role"),
		Organization: form.Required("organization"),
		Quote:        form.Required("quote"),
		IsActive:     true,
	}
	if t.Name == "" || t.Role == "" || t.Organization == "" || t.Quote == "" {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Name, role, organization, and quote are required")
	}
	order, _, err := form.Int("order")
	if err != nil {
		return nil, err
	}
	t.Order = order

	stage := content.NewStaging(s.files, log)
	logo, err := stage.Save(upload.TestimonialLogo, form.File(upload.TestimonialLogo.Field))
	if err != nil {
		return nil, err
	}
	if logo != "" {
		t.Logo = &logo
	}

	if err := s.store.Create(ctx, t); err != nil {
		stage.Rollback()
		return nil, content.StoreError(Kind, err)
	}

	log.Info("Testimonial created", logger.RecordID(t.ID))
	return t, nil
}

func (s *Service) Update(ctx context.Context, id string, form *content.Form) (*Testimonial, error) {
	log := s.log.WithContext(ctx)

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = form.Keep("name", current.Name)
	updated.Role = form.Keep("role", current.Role)
	updated.Organization = form.Keep("organization", current.Organization)
	updated.Quote = form.Keep("quote", current.Quote)
	if order, ok, err := form.Int("order"); err != nil {
		return nil, err
	} else if ok {
		updated.Order = order
	}
	if active, ok, err := form.Bool("isActive"); err != nil {
		return nil, err
	} else if ok {
		updated.IsActive = active
	}

	stage := content.NewStaging(s.files, log)
	logo, err := stage.Save(upload.TestimonialLogo, form.File(upload.TestimonialLogo.Field))
	if err != nil {
		return nil, err
	}
	if logo != "" {
		updated.Logo = &logo
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		if len(stage.Saved()) > 0 {
			log.Error("Testimonial update failed after upload, discarding new files", err,
				logger.RecordID(id),
				logger.Any("new_files", stage.Saved()),
				logger.String("current_logo", current.logoPath()),
			)
		}
		stage.Rollback()
		return nil, content.StoreError(Kind, err)
	}

	content.Discard(s.files, log, content.Replaced(current.logoPath(), updated.logoPath()))
	log.Info("Testimonial updated", logger.RecordID(id))
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	log := s.log.WithContext(ctx)

	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	content.Discard(s.files, log, current.logoPath())
	if err := s.store.Delete(ctx, id); err != nil {
		log.Error("Testimonial delete failed after logo was removed, record references a missing file", err,
			logger.RecordID(id),
			logger.String("removed_logo", current.logoPath()),
		)
		return content.StoreError(Kind, err)
	}

	log.Info("Testimonial deleted", logger.RecordID(id))
	return nil
}
