package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "filehub/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", apperrors.NotFound("file item not found"), http.StatusNotFound, "file item not found"},
		{"forbidden", apperrors.Forbidden("no"), http.StatusForbidden, "no"},
		{"validation", apperrors.Validation("bad name"), http.StatusBadRequest, "bad name"},
		{"expired", apperrors.Expired("shared link has expired"), http.StatusGone, "shared link has expired"},
		{"credentials", apperrors.InvalidCredentials(), http.StatusUnauthorized, "invalid email or password"},
		{"disabled", apperrors.AccountDisabled("account disabled"), http.StatusForbidden, "account disabled"},
		{"storage", apperrors.Storage("disk full", errors.New("ENOSPC")), http.StatusInternalServerError, "Internal server error"},
		{"persistence", apperrors.Persistence("db down", errors.New("conn")), http.StatusInternalServerError, "Internal server error"},
		{"echo", echo.NewHTTPError(http.StatusTeapot, "tea"), http.StatusTeapot, "tea"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := StatusFor(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestHTTPErrorHandler_HidesInternalDetail(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set("request_id", "req-1")

	NewHTTPErrorHandler(zap.NewNop())(apperrors.Persistence("failed to save file metadata", errors.New("pq: secret")), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "req-1", body["request_id"])
}
