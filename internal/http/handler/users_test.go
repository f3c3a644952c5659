package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"filehub/internal/audit"
	"filehub/internal/domain/user"
	"filehub/internal/users"
	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserAdmin struct {
	target     *user.User
	err        error
	created    users.CreateInput
	listFilter *user.Type
	active     *bool
	role       string
	actor      uuid.UUID
}

func (f *fakeUserAdmin) Create(_ context.Context, in users.CreateInput) (*user.User, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &user.User{ID: f.target.ID, Email: in.Email, Type: in.Type, IsActive: true}, nil
}

func (f *fakeUserAdmin) Get(context.Context, uuid.UUID) (*user.User, error) {
	return f.target, f.err
}

func (f *fakeUserAdmin) List(_ context.Context, t *user.Type) ([]user.User, error) {
	f.listFilter = t
	return []user.User{*f.target}, f.err
}

func (f *fakeUserAdmin) UpdateProfile(_ context.Context, _ uuid.UUID, in user.UpdateProfileInput) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := *f.target
	u.FirstName = in.FirstName
	return &u, nil
}

func (f *fakeUserAdmin) SetActive(_ context.Context, _ uuid.UUID, active bool, actorID uuid.UUID) (*user.User, error) {
	f.active, f.actor = &active, actorID
	if f.err != nil {
		return nil, f.err
	}
	u := *f.target
	u.IsActive = active
	return &u, nil
}

func (f *fakeUserAdmin) AssignRole(_ context.Context, _ uuid.UUID, role string) (*user.User, error) {
	f.role = role
	return f.target, f.err
}

func (f *fakeUserAdmin) RemoveRole(_ context.Context, _ uuid.UUID, role string, actorID uuid.UUID) (*user.User, error) {
	f.role, f.actor = role, actorID
	return f.target, f.err
}

func TestUsersHandler_Create(t *testing.T) {
	admin := uuid.New()
	svc := &fakeUserAdmin{target: &user.User{ID: uuid.New()}}
	spy := &auditSpy{}
	h := NewUsersHandler(svc, spy)

	c, rec := newContext(http.MethodPost, "/api/admin/users",
		jsonBody(`{"email":"ana@outcom.com","password":"Str0ngPass!","first_name":"Ana","user_type":"client"}`), &admin)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, admin, svc.created.CreatedBy)
	assert.Equal(t, user.TypeClient, svc.created.Type)
	assert.Equal(t, []audit.Action{audit.ActionUserCreated, audit.ActionRoleAssigned}, spy.actions())
	assert.Equal(t, svc.target.ID.String(), spy.entries[0].TargetUserID)
	assert.Equal(t, "ana@outcom.com", spy.entries[0].TargetUserEmail)

	c, rec = newContext(http.MethodPost, "/api/admin/users",
		jsonBody(`{"email":"x@outcom.com","password":"Str0ngPass!","user_type":"robot"}`), &admin)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, spy.entries, 2)
}

func TestUsersHandler_CreateConflictIsAudited(t *testing.T) {
	admin := uuid.New()
	svc := &fakeUserAdmin{target: &user.User{ID: uuid.New()}, err: apperrors.Conflict("user with this email already exists")}
	spy := &auditSpy{}
	h := NewUsersHandler(svc, spy)

	c, _ := newContext(http.MethodPost, "/api/admin/users",
		jsonBody(`{"email":"ana@outcom.com","password":"Str0ngPass!"}`), &admin)
	err := h.Create(c)

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	require.Len(t, spy.entries, 1)
	assert.Equal(t, audit.ActionUserCreated, spy.entries[0].Action)
	assert.Equal(t, "user with this email already exists", spy.entries[0].Failure)
}

func TestUsersHandler_List(t *testing.T) {
	admin := uuid.New()
	svc := &fakeUserAdmin{target: &user.User{ID: uuid.New(), Email: "c@outcom.com"}}
	h := NewUsersHandler(svc, &auditSpy{})

	c, rec := newContext(http.MethodGet, "/api/admin/users?type=admin", nil, &admin)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listFilter)
	assert.Equal(t, user.TypeAdmin, *svc.listFilter)

	c, _ = newContext(http.MethodGet, "/api/admin/users", nil, &admin)
	require.NoError(t, h.List(c))
	assert.Nil(t, svc.listFilter)

	c, rec = newContext(http.MethodGet, "/api/admin/users?type=nobody", nil, &admin)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersHandler_ActivationAndRoles(t *testing.T) {
	admin := uuid.New()
	target := &user.User{ID: uuid.New(), Email: "c@outcom.com"}
	svc := &fakeUserAdmin{target: target}
	spy := &auditSpy{}
	h := NewUsersHandler(svc, spy)

	c, rec := newContext(http.MethodPost, "/api/admin/users/x/deactivate", nil, &admin)
	c.SetParamNames(paramID)
	c.SetParamValues(target.ID.String())
	require.NoError(t, h.Deactivate(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *svc.active)
	assert.Equal(t, admin, svc.actor)

	c, _ = newContext(http.MethodPost, "/api/admin/users/x/activate", nil, &admin)
	c.SetParamNames(paramID)
	c.SetParamValues(target.ID.String())
	require.NoError(t, h.Activate(c))
	assert.True(t, *svc.active)

	c, _ = newContext(http.MethodPost, "/api/admin/users/x/roles", jsonBody(`{"role":"Admin"}`), &admin)
	c.SetParamNames(paramID)
	c.SetParamValues(target.ID.String())
	require.NoError(t, h.AssignRole(c))
	assert.Equal(t, user.RoleAdmin, svc.role)

	c, _ = newContext(http.MethodDelete, "/api/admin/users/x/roles/Client", nil, &admin)
	c.SetParamNames(paramID, paramRole)
	c.SetParamValues(target.ID.String(), user.RoleClient)
	require.NoError(t, h.RemoveRole(c))
	assert.Equal(t, user.RoleClient, svc.role)

	c, _ = newContext(http.MethodPut, "/api/admin/users/x", jsonBody(`{"first_name":"Eva"}`), &admin)
	c.SetParamNames(paramID)
	c.SetParamValues(target.ID.String())
	require.NoError(t, h.Update(c))

	assert.Equal(t, []audit.Action{
		audit.ActionUserDeactivated,
		audit.ActionUserActivated,
		audit.ActionRoleAssigned,
		audit.ActionRoleRemoved,
		audit.ActionUserUpdated,
	}, spy.actions())
	for _, e := range spy.entries {
		assert.Equal(t, target.ID.String(), e.TargetUserID)
		assert.Equal(t, target.Email, e.TargetUserEmail)
		assert.Empty(t, e.Failure)
	}
}

func TestUsersHandler_FailuresAreAudited(t *testing.T) {
	admin := uuid.New()
	svc := &fakeUserAdmin{target: &user.User{ID: admin}, err: apperrors.Validation("you cannot deactivate your own account")}
	spy := &auditSpy{}
	h := NewUsersHandler(svc, spy)

	c, _ := newContext(http.MethodPost, "/api/admin/users/x/deactivate", nil, &admin)
	c.SetParamNames(paramID)
	c.SetParamValues(admin.String())
	assert.True(t, errors.Is(h.Deactivate(c), apperrors.ErrValidation))

	c, rec := newContext(http.MethodPost, "/api/admin/users/x/activate", nil, &admin)
	c.SetParamNames(paramID)
	c.SetParamValues("not-a-uuid")
	require.NoError(t, h.Activate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Len(t, spy.entries, 1)
	assert.Equal(t, audit.ActionUserDeactivated, spy.entries[0].Action)
	assert.Equal(t, "you cannot deactivate your own account", spy.entries[0].Failure)
}
