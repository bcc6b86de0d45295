package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/tirzah-studio/site-api/domain/auth"
	"github.com/tirzah-studio/site-api/pkg/logger"
)

// AdminIDKey is the echo context key holding the authenticated admin id.
const AdminIDKey = "admin_id"

// Authenticator resolves an Authorization header to an admin.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*auth.Admin, error)
}

// RequireAdmin rejects requests without a valid session token: 401 when the
// header is missing, 403 when the token is invalid, expired or revoked.
func RequireAdmin(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			admin, err := a.Authenticate(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			c.Set(AdminIDKey, admin.ID)
			c.SetRequest(req.WithContext(logger.WithAdminIDContext(req.Context(), admin.ID)))
			return next(c)
		}
	}
}

// AdminID returns the id set by RequireAdmin.
func AdminID(c echo.Context) string {
	id, _ := c.Get(AdminIDKey).(string)
	return id
}
