package contact

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// SubmitQuoteHandler serves POST /api/contact/quote.
func (h *Handler) SubmitQuoteHandler(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload")
	}
	resp, err := h.svc.Submit(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
