package testimonial

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

func (h *Handler) ListHandler(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetHandler(c echo.Context) error {
	t, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateHandler(c echo.Context) error {
	form, err := content.ReadForm(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Create(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateHandler(c echo.Context) error {
	form, err := content.ReadForm(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Update(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteHandler(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": Kind + " deleted successfully"})
}
