package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const RequestIDHeader = echo.HeaderXRequestID

// RequestLoggerMiddleware assigns every request an id (reusing an incoming
// X-Request-ID) and writes one summary line once the response is final.
func RequestLoggerMiddleware(log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Set(string(ContextKeyRequestID), requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)
			c.SetRequest(req.WithContext(WithRequestIDContext(req.Context(), requestID)))

			reqLog := log.WithRequestID(requestID).WithFields(
				Method(req.Method),
				Path(req.URL.Path),
				RemoteIP(c.RealIP()),
				String("user_agent", req.UserAgent()),
			)

			err := next(c)
			if err != nil {
				// The error handler writes the response, so the status below is final.
				c.Error(err)
			}

			res := c.Response()
			fields := []Field{
				Status(res.Status),
				Duration("duration_ms", time.Since(start)),
				Int64("bytes_out", res.Size),
			}
			if adminID, ok := c.Get(string(ContextKeyAdminID)).(string); ok {
				fields = append(fields, AdminID(adminID))
			}
			logResponse(reqLog, res.Status, err, fields)
			return nil
		}
	}
}

func logResponse(log Logger, status int, err error, fields []Field) {
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("Server error response", err, fields...)
	case status >= http.StatusBadRequest:
		log.Warn("Client error response", fields...)
	default:
		log.Info("Request completed", fields...)
	}
}

// RecoveryMiddleware turns a panic into the generic 500 body.
func RecoveryMiddleware(log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				requestID := GetRequestIDFromContext(c)
				log.WithRequestID(requestID).Error("Panic recovered", nil,
					Any("panic", r),
					Method(c.Request().Method),
					Path(c.Request().URL.Path),
				)
				err = c.JSON(http.StatusInternalServerError, map[string]string{
					"error":      "Internal server error",
					"code":       "INTERNAL_UNEXPECTED_ERROR",
					"request_id": requestID,
				})
			}()
			return next(c)
		}
	}
}

func GetRequestIDFromContext(c echo.Context) string {
	id, _ := c.Get(string(ContextKeyRequestID)).(string)
	return id
}
