package auth

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

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload")
	}
	return nil
}

// LoginHandler serves POST /api/auth/login.
func (h *Handler) LoginHandler(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.IP = c.RealIP()
	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// RegisterHandler serves POST /api/auth/register.
func (h *Handler) RegisterHandler(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// VerifyHandler serves GET /api/auth/verify. It reads the bearer itself
// rather than sitting behind RequireAdmin so an unknown admin is a 404.
func (h *Handler) VerifyHandler(c echo.Context) error {
	resp, err := h.svc.Verify(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ForgotPasswordHandler(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.ForgotPassword(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ResetPasswordHandler(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.ResetPassword(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
