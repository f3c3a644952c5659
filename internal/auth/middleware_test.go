package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireJWT(t *testing.T) {
	jwtSvc := NewJWTService(testSecret, time.Hour)
	m := NewMiddleware(jwtSvc)
	id := uuid.New()
	token, _, err := jwtSvc.Generate(id, "u@filehub.io")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRequest(tt.header)
			h := m.RequireJWT()(func(c echo.Context) error {
				got, err := GetUserID(c)
				require.NoError(t, err)
				assert.Equal(t, id, got)
				assert.Equal(t, "u@filehub.io", GetEmail(c))
				return c.NoContent(http.StatusOK)
			})
			require.NoError(t, h(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestIdentifyJWT_AllowsAnonymous(t *testing.T) {
	m := NewMiddleware(NewJWTService(testSecret, time.Hour))
	c, rec := newRequest("Bearer nope")

	h := m.IdentifyJWT()(func(c echo.Context) error {
		_, err := GetUserID(c)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
		return c.NoContent(http.StatusNoContent)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetUserID_WrongType(t *testing.T) {
	c, _ := newRequest("")
	c.Set(ContextKeyUserID, "not-a-uuid")
	_, err := GetUserID(c)
	assert.Error(t, err)
}
