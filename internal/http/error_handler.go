package http

import (
	"errors"
	"fmt"
	"net/http"

	"filehub/internal/http/middleware"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorMapping struct {
	target  error
	code    int
	message string
}

var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "Resource not found"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, "Account disabled"},
	{apperrors.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "Bad request"},
	{apperrors.ErrValidation, http.StatusBadRequest, "Validation error"},
	{apperrors.ErrPathTraversal, http.StatusBadRequest, "Invalid path"},
	{apperrors.ErrConflict, http.StatusConflict, "Resource already exists"},
	{apperrors.ErrExpired, http.StatusGone, "Resource expired"},
}

// NewHTTPErrorHandler maps application errors to status codes and a JSON
// body of {"error", "request_id"}. Client errors carry the AppError
// message; server errors are logged and answered generically.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := StatusFor(err)

		requestID := middleware.GetRequestID(c)
		if requestID == "" {
			requestID = "unknown"
		}

		if code >= http.StatusInternalServerError {
			log.Error("internal_server_error",
				zap.String("request_id", requestID),
				zap.Int("status", code),
				logger.SafeError(err),
			)
			message = "Internal server error"
		}

		if err := c.JSON(code, map[string]string{
			"error":      message,
			"request_id": requestID,
		}); err != nil {
			log.Error("failed to write error response", logger.SafeError(err))
		}
	}
}

// StatusFor returns the status code and public message for err.
func StatusFor(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	code, message := http.StatusInternalServerError, "Internal server error"
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			code, message = m.code, m.message
			break
		}
	}

	var appErr *apperrors.AppError
	if code < http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}
	return code, message
}
