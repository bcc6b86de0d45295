package apperrors

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tirzah-studio/site-api/pkg/logger"
)

const msgInternal = "Internal server error"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HTTPErrorHandler renders AppErrors with their own status and message,
// echo errors (unknown route, body too large) with theirs, and anything
// else as a generic 500. Causes of 5xx responses are logged, never sent.
func HTTPErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		requestID := logger.GetRequestIDFromContext(c)
		status, resp := resolve(err, log.WithRequestID(requestID))
		resp.RequestID = requestID

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}

func resolve(err error, log logger.Logger) (int, ErrorResponse) {
	if appErr, ok := AsAppError(err); ok {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("Internal error", appErr.Err,
				logger.String("error_code", appErr.Code),
				logger.String("message", appErr.Message),
				logger.String("stack", appErr.Stack),
			)
		} else {
			log.Debug("Client error",
				logger.String("error_code", appErr.Code),
				logger.String("message", appErr.Message),
			)
		}
		return appErr.HTTPStatus, ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	}

	if he, ok := err.(*echo.HTTPError); ok {
		if he.Code >= http.StatusInternalServerError {
			log.Error("HTTP error", he.Internal, logger.Status(he.Code))
			return he.Code, ErrorResponse{Error: msgInternal, Code: ErrCodeUnexpectedError}
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, ErrorResponse{Error: msg, Code: "HTTP_ERROR"}
	}

	log.Error("Unhandled error", err)
	return http.StatusInternalServerError, ErrorResponse{Error: msgInternal, Code: ErrCodeUnexpectedError}
}
