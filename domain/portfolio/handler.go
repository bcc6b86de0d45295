package portfolio

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tirzah-studio/site-api/domain/content"
	"github.com/tirzah-studio/site-api/pkg/apperrors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListHandler serves GET /api/portfolio[?isActive=true|false].
func (h *Handler) ListHandler(c echo.Context) error {
	var active *bool
	if raw := c.QueryParam("isActive"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "isActive must be true or false")
		}
		active = &b
	}

	items, err := h.svc.List(c.Request().Context(), active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetHandler(c echo.Context) error {
	it, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

// CreateHandler serves POST /api/portfolio (multipart, fields "media" and
// optional "video").
func (h *Handler) CreateHandler(c echo.Context) error {
	form, err := content.ReadForm(c)
	if err != nil {
		return err
	}
	it, err := h.svc.Create(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, it)
}

func (h *Handler) UpdateHandler(c echo.Context) error {
	form, err := content.ReadForm(c)
	if err != nil {
		return err
	}
	it, err := h.svc.Update(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) DeleteHandler(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": Kind + " deleted successfully"})
}
