package client

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
	return &Service{store: store, files: files, log: log.WithComponent("client")}
}

// List returns active clients in display order.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	log := s.log.WithContext(ctx)

	clients, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, content.StoreError(Kind, err)
	}
	if clients == nil {
		clients = []Client{}
	}
	for i := range clients {
		clients[i].Logo = content.Visible(s.files, log, clients[i].Logo)
	}
	return clients, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Logo = content.Visible(s.files, s.log.WithContext(ctx), c.Logo)
	return c, nil
}

func (s *Service) load(ctx context.Context, id string) (*Client, error) {
	if !content.ValidID(id) {
		return nil, content.NotFound(Kind)
	}
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, content.StoreError(Kind, err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, form *content.Form) (*Client, error) {
	log := s.log.WithContext(ctx)

	fh := form.File(upload.ClientLogo.Field)
	if fh == nil {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingFile, "Logo image is required")
	}
	name := form.Required("name")
	if name == "" {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Client name is required")
	}
	order, _, err := form.Int("order")
	if err != nil {
		return nil, err
	}

	stage := content.NewStaging(s.files, log)
	logo, err := stage.Save(upload.ClientLogo, fh)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:       uuid.NewString(),
		Name:     name,
		Logo:     logo,
		Order:    order,
		IsActive: true,
	}
	if err := s.store.Create(ctx, c); err != nil {
		stage.Rollback()
		return nil, content.StoreError(Kind, err)
	}

	log.Info("Client created", logger.RecordID(c.ID))
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, form *content.Form) (*Client, error) {
	log := s.log.WithContext(ctx)

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = form.Keep("name", current.Name)
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
	logo, err := stage.Save(upload.ClientLogo, form.File(upload.ClientLogo.Field))
	if err != nil {
		return nil, err
	}
	if logo != "" {
		updated.Logo = logo
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		if len(stage.Saved()) > 0 {
			log.Error("Client update failed after upload, discarding new files", err,
				logger.RecordID(id),
				logger.Any("new_files", stage.Saved()),
				logger.String("current_logo", current.Logo),
			)
		}
		stage.Rollback()
		return nil, content.StoreError(Kind, err)
	}

	content.Discard(s.files, log, content.Replaced(current.Logo, updated.Logo))
	log.Info("Client updated", logger.RecordID(id))
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	log := s.log.WithContext(ctx)

	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	content.Discard(s.files, log, current.Logo)
	if err := s.store.Delete(ctx, id); err != nil {
		log.Error("Client delete failed after logo was removed, record references a missing file", err,
			logger.RecordID(id),
			logger.String("removed_logo", current.Logo),
		)
		return content.StoreError(Kind, err)
	}

	log.Info("Client deleted", logger.RecordID(id))
	return nil
}
