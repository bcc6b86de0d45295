package client

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tirzah-studio/site-api/domain/content"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListHandler serves GET /api/clients.
func (h *Handler) ListHandler(c echo.Context) error {
	clients, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clients)
}

// GetHandler serves GET /api/clients/:id.
func (h *Handler) GetHandler(c echo.Context) error {
	client, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// CreateHandler serves POST /api/clients (multipart, field "logo").
func (h *Handler) CreateHandler(c echo.Context) error {
	form, err := content.ReadForm(c)
	if err != nil {
		return err
	}
	client, err := h.svc.Create(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// UpdateHandler serves PUT /api/clients/:id.
func (h *Handler) UpdateHandler(c echo.Context) error {
	form, err := content.ReadForm(c)
	if err != nil {
		return err
	}
	client, err := h.svc.Update(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteHandler serves DELETE /api/clients/:id.
func (h *Handler) DeleteHandler(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": Kind + " deleted successfully"})
}
