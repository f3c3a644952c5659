package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"filehub/internal/audit"
	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userMap map[uuid.UUID]*user.User

func (m userMap) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user not found")
}

type failingLookup struct{}

func (failingLookup) GetByID(context.Context, uuid.UUID) (*user.User, error) {
	return nil, errors.New("db down")
}

type recorder struct{ entries []audit.Entry }

func (r *recorder) Record(_ context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func TestAdminGuard(t *testing.T) {
	admin := &user.User{ID: uuid.New(), Email: "admin@filehub.io", IsActive: true, Type: user.TypeAdmin, Roles: []string{"admin"}}
	inactive := &user.User{ID: uuid.New(), Email: "old@filehub.io", IsActive: false, Roles: []string{user.RoleAdmin}}
	client := &user.User{ID: uuid.New(), Email: "c@filehub.io", IsActive: true, Roles: []string{user.RoleClient}}
	users := userMap{admin.ID: admin, inactive.ID: inactive, client.ID: client}

	stranger := uuid.New()

	tests := []struct {
		name       string
		userID     *uuid.UUID
		status     int
		auditedAs  string
		successful bool
	}{
		{"unauthenticated", nil, http.StatusUnauthorized, audit.Unknown, false},
		{"unknown user", &stranger, http.StatusUnauthorized, stranger.String(), false},
		{"inactive", &inactive.ID, http.StatusForbidden, inactive.ID.String(), false},
		{"not admin", &client.ID, http.StatusForbidden, client.ID.String(), false},
		{"admin", &admin.ID, http.StatusOK, admin.ID.String(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			g := NewAdminGuard(users, rec, nil)
			c, resp := newRequest("")
			c.Request().Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
			c.Request().Header.Set("User-Agent", "curl/8")
			if tt.userID != nil {
				c.Set(ContextKeyUserID, *tt.userID)
			}

			h := g.Require()(func(c echo.Context) error {
				u, ok := CurrentUser(c)
				require.True(t, ok)
				assert.Equal(t, admin.ID, u.ID)
				return c.NoContent(http.StatusOK)
			})
			require.NoError(t, h(c))
			assert.Equal(t, tt.status, resp.Code)

			require.Len(t, rec.entries, 1)
			e := rec.entries[0]
			assert.Equal(t, audit.ActionAdminActionPerformed, e.Action)
			assert.Equal(t, tt.auditedAs, e.UserID)
			assert.Equal(t, "203.0.113.9", e.IPAddress)
			assert.Equal(t, "curl/8", e.UserAgent)
			assert.Equal(t, tt.successful, e.Failure == "")
		})
	}
}

func TestAdminGuard_AnonymousThroughIdentify(t *testing.T) {
	rec := &recorder{}
	g := NewAdminGuard(userMap{}, rec, nil)
	m := NewMiddleware(NewJWTService(testSecret, time.Hour))
	c, resp := newRequest("Bearer not-a-token")
	c.Request().Header.Set("X-Forwarded-For", "203.0.113.9")

	h := m.IdentifyJWT()(g.Require()(func(c echo.Context) error { return c.NoContent(http.StatusOK) }))
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.Unknown, rec.entries[0].UserID)
	assert.Equal(t, "203.0.113.9", rec.entries[0].IPAddress)
	assert.Equal(t, msgUnauthorized, rec.entries[0].Failure)
}

func TestAdminGuard_LookupFailure(t *testing.T) {
	g := NewAdminGuard(failingLookup{}, &recorder{}, nil)
	c, resp := newRequest("")
	c.Set(ContextKeyUserID, uuid.New())

	h := g.Require()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

