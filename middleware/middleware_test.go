package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirzah-studio/site-api/domain/auth"
	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/logger"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(logger.Nop())
	return e
}

func get(e *echo.Echo, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type fakeAuthenticator map[string]string

func (f fakeAuthenticator) Authenticate(_ context.Context, header string) (*auth.Admin, error) {
	if header == "" {
		return nil, apperrors.NewUnauthorized(apperrors.ErrCodeTokenMissing, "Access token required")
	}
	id, ok := f[header]
	if !ok {
		return nil, apperrors.NewForbidden(apperrors.ErrCodeTokenInvalid, "Invalid or expired token")
	}
	return &auth.Admin{ID: id}, nil
}

func TestRequireAdmin(t *testing.T) {
	e := newEcho()
	e.GET("/private", func(c echo.Context) error {
		assert.Equal(t, "admin-1", logger.GetAdminID(c.Request().Context()))
		return c.String(http.StatusOK, AdminID(c))
	}, RequireAdmin(fakeAuthenticator{"Bearer good": "admin-1"}))

	rec := get(e, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access token required")

	rec = get(e, "/private", "Bearer bad")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")

	rec = get(e, "/private", "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", rec.Body.String())
}

func limitedServer(cfg RateLimiterConfig) *echo.Echo {
	e := newEcho()
	e.GET("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RateLimiterMiddleware(cfg))
	return e
}

func TestRateLimiterRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e := limitedServer(RateLimiterConfig{
		Group:         "auth",
		MaxRequests:   2,
		Window:        time.Minute,
		BlockDuration: 5 * time.Minute,
		Redis:         rdb,
	})

	assert.Equal(t, http.StatusNoContent, get(e, "/limited", "").Code)
	assert.Equal(t, http.StatusNoContent, get(e, "/limited", "").Code)

	rec := get(e, "/limited", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), msgTooManyRequests)
	assert.True(t, mr.Exists("ratelimit:auth:203.0.113.7:blocked"))

	// The block outlives the counting window.
	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "/limited", "").Code)

	mr.FastForward(5 * time.Minute)
	assert.Equal(t, http.StatusNoContent, get(e, "/limited", "").Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	e := limitedServer(RateLimiterConfig{Group: "auth", MaxRequests: 1, Window: time.Minute, Redis: rdb})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, get(e, "/limited", "").Code)
	}
}

func TestRateLimiterMemory(t *testing.T) {
	e := limitedServer(RateLimiterConfig{Group: "contact", MaxRequests: 2, Window: time.Hour})

	assert.Equal(t, http.StatusNoContent, get(e, "/limited", "").Code)
	assert.Equal(t, http.StatusNoContent, get(e, "/limited", "").Code)

	rec := get(e, "/limited", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), msgTooManyRequests)
}
