package handler

import (
	"net/http"

	"filehub/internal/audit"
	apperrors "filehub/pkg/errors"

	"github.com/labstack/echo/v4"
)

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyMessage: message})
}

func handleHTTPError(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		return respondError(c, he.Code, msg)
	}

	return respondError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// recordFailure audits a rejected operation and returns err for the
// central error handler.
func recordFailure(c echo.Context, rec AuditRecorder, e audit.Entry, err error) error {
	e.Failure = failureMessage(err)
	rec.RecordFromContext(c, e)
	return err
}

func failureMessage(err error) string {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
