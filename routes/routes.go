package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/tirzah-studio/site-api/domain/auth"
	"github.com/tirzah-studio/site-api/domain/client"
	"github.com/tirzah-studio/site-api/domain/contact"
	"github.com/tirzah-studio/site-api/domain/health"
	"github.com/tirzah-studio/site-api/domain/portfolio"
	"github.com/tirzah-studio/site-api/domain/testimonial"
)

// Handlers bundles everything the API surface dispatches to.
type Handlers struct {
	Auth        *auth.Handler
	Portfolio   *portfolio.Handler
	Clients     *client.Handler
	Testimonial *testimonial.Handler
	Contact     *contact.Handler
	Health      *health.Handler

	// RequireAdmin guards every content write.
	RequireAdmin echo.MiddlewareFunc
	// AuthLimit and ContactLimit throttle the unauthenticated POST routes.
	AuthLimit    echo.MiddlewareFunc
	ContactLimit echo.MiddlewareFunc
}

type crud interface {
	ListHandler(c echo.Context) error
	GetHandler(c echo.Context) error
	CreateHandler(c echo.Context) error
	UpdateHandler(c echo.Context) error
	DeleteHandler(c echo.Context) error
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func RegisterRoutes(e *echo.Echo, h Handlers) {
	for _, mw := range []*echo.MiddlewareFunc{&h.RequireAdmin, &h.AuthLimit, &h.ContactLimit} {
		if *mw == nil {
			*mw = passThrough
		}
	}

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.Auth.LoginHandler, h.AuthLimit)
	authGroup.POST("/register", h.Auth.RegisterHandler)
	authGroup.GET("/verify", h.Auth.VerifyHandler)
	authGroup.POST("/forgot-password", h.Auth.ForgotPasswordHandler, h.AuthLimit)
	authGroup.POST("/reset-password", h.Auth.ResetPasswordHandler, h.AuthLimit)

	registerCRUD(api.Group("/portfolio"), h.Portfolio, h.RequireAdmin)
	registerCRUD(api.Group("/clients"), h.Clients, h.RequireAdmin)
	registerCRUD(api.Group("/testimonials"), h.Testimonial, h.RequireAdmin)

	api.POST("/contact/quote", h.Contact.SubmitQuoteHandler, h.ContactLimit)

	healthGroup := api.Group("/health")
	healthGroup.GET("", h.Health.HealthHandler)
	healthGroup.GET("/live", h.Health.LivenessHandler)
	healthGroup.GET("/ready", h.Health.ReadinessHandler)
	healthGroup.GET("/stats", h.Health.StatsHandler)
}

// registerCRUD mounts public reads and admin-only writes for one record kind.
func registerCRUD(g *echo.Group, h crud, requireAdmin echo.MiddlewareFunc) {
	g.GET("", h.ListHandler)
	g.GET("/:id", h.GetHandler)
	g.POST("", h.CreateHandler, requireAdmin)
	g.PUT("/:id", h.UpdateHandler, requireAdmin)
	g.DELETE("/:id", h.DeleteHandler, requireAdmin)
}
