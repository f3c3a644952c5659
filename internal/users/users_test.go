package users

import (
	"context"
	"strings"
	"testing"

	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/password"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memStore struct {
	users map[uuid.UUID]*user.User
	roles map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		users: map[uuid.UUID]*user.User{},
		roles: map[string]bool{user.RoleAdmin: true, user.RoleClient: true},
	}
}

func (m *memStore) Create(_ context.Context, in user.CreateUserInput) (*user.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, in.Email) {
			return nil, apperrors.Conflict("user with this email already exists")
		}
	}
	u := &user.User{
		ID: uuid.New(), Email: in.Email, PasswordHash: in.PasswordHash, FirstName: in.FirstName,
		LastName: in.LastName, Type: in.Type, IsActive: true, CreatedBy: in.CreatedBy, Roles: []string{},
	}
	m.users[u.ID] = u
	return m.copyOf(u), nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return m.copyOf(u), nil
}

func (m *memStore) List(_ context.Context, t *user.Type) ([]user.User, error) {
	out := []user.User{}
	for _, u := range m.users {
		if t == nil || u.Type == *t {
			out = append(out, *m.copyOf(u))
		}
	}
	return out, nil
}

func (m *memStore) UpdateProfile(_ context.Context, id uuid.UUID, in user.UpdateProfileInput) error {
	u, ok := m.users[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	u.FirstName, u.LastName, u.Address = in.FirstName, in.LastName, in.Address
	return nil
}

func (m *memStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	u.IsActive = active
	return nil
}

func (m *memStore) AssignRole(_ context.Context, id uuid.UUID, role string) error {
	if !m.roles[role] {
		return apperrors.NotFound("role not found")
	}
	u := m.users[id]
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
	return nil
}

func (m *memStore) RemoveRole(_ context.Context, id uuid.UUID, role string) (bool, error) {
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	for i, r := range u.Roles {
		if r == role {
			u.Roles = append(u.Roles[:i], u.Roles[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) copyOf(u *user.User) *user.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

type invalidations []uuid.UUID

func (i *invalidations) Invalidate(id uuid.UUID) { *i = append(*i, id) }

func newService(t *testing.T) (*Service, *memStore, *invalidations) {
	t.Helper()
	store := newMemStore()
	inv := &invalidations{}
	return NewService(store, password.NewHasher(bcrypt.MinCost), inv, nil), store, inv
}

func TestCreate(t *testing.T) {
	svc, store, _ := newService(t)
	admin := uuid.New()

	u, err := svc.Create(context.Background(), CreateInput{
		Email: " ana@outcom.com ", Password: "Str0ngPass!", FirstName: "Ana", LastName: "Ruiz", CreatedBy: admin,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@outcom.com", u.Email)
	assert.Equal(t, user.TypeClient, u.Type)
	assert.True(t, u.IsActive)
	assert.Equal(t, []string{user.RoleClient}, store.users[u.ID].Roles)
	require.NotNil(t, u.CreatedBy)
	assert.Equal(t, admin.String(), *u.CreatedBy)
	assert.NotEqual(t, "Str0ngPass!", store.users[u.ID].PasswordHash)

	a, err := svc.Create(context.Background(), CreateInput{Email: "boss@outcom.com", Password: "Str0ngPass!", Type: user.TypeAdmin})
	require.NoError(t, err)
	assert.True(t, a.HasRole(user.RoleAdmin))

	_, err = svc.Create(context.Background(), CreateInput{Email: "ANA@outcom.com", Password: "Str0ngPass!"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestCreate_Validation(t *testing.T) {
	svc, store, _ := newService(t)

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"bad email", CreateInput{Email: "nope", Password: "Str0ngPass!"}},
		{"weak password", CreateInput{Email: "a@outcom.com", Password: "x"}},
		{"long name", CreateInput{Email: "a@outcom.com", Password: "Str0ngPass!", FirstName: strings.Repeat("a", 101)}},
		{"bad type", CreateInput{Email: "a@outcom.com", Password: "Str0ngPass!", Type: user.Type(7)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
		})
	}
	assert.Empty(t, store.users)
}

func TestSetActive(t *testing.T) {
	svc, store, inv := newService(t)
	ctx := context.Background()
	actor := uuid.New()
	u, err := svc.Create(ctx, CreateInput{Email: "c@outcom.com", Password: "Str0ngPass!"})
	require.NoError(t, err)

	got, err := svc.SetActive(ctx, u.ID, false, actor)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.False(t, store.users[u.ID].IsActive)

	got, err = svc.SetActive(ctx, u.ID, true, actor)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, []uuid.UUID{u.ID, u.ID}, []uuid.UUID(*inv))

	_, err = svc.SetActive(ctx, actor, false, actor)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.SetActive(ctx, uuid.New(), true, actor)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestRoles(t *testing.T) {
	svc, _, inv := newService(t)
	ctx := context.Background()
	actor := uuid.New()
	u, err := svc.Create(ctx, CreateInput{Email: "c@outcom.com", Password: "Str0ngPass!"})
	require.NoError(t, err)

	got, err := svc.AssignRole(ctx, u.ID, user.RoleAdmin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{user.RoleClient, user.RoleAdmin}, got.Roles)

	_, err = svc.AssignRole(ctx, u.ID, "Auditor")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.AssignRole(ctx, uuid.New(), user.RoleAdmin)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	got, err = svc.RemoveRole(ctx, u.ID, user.RoleClient, actor)
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleAdmin}, got.Roles)

	_, err = svc.RemoveRole(ctx, u.ID, user.RoleClient, actor)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = svc.RemoveRole(ctx, u.ID, user.RoleAdmin, u.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	assert.Equal(t, []uuid.UUID{u.ID, u.ID}, []uuid.UUID(*inv))
}

func TestUpdateProfileAndList(t *testing.T) {
	svc, _, inv := newService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, CreateInput{Email: "c@outcom.com", Password: "Str0ngPass!"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Email: "a@outcom.com", Password: "Str0ngPass!", Type: user.TypeAdmin})
	require.NoError(t, err)

	got, err := svc.UpdateProfile(ctx, c.ID, user.UpdateProfileInput{FirstName: " Eva ", LastName: "Paz", Address: "Calle 1"})
	require.NoError(t, err)
	assert.Equal(t, "Eva", got.FirstName)
	assert.Equal(t, "Calle 1", got.Address)
	assert.Equal(t, []uuid.UUID{c.ID}, []uuid.UUID(*inv))

	_, err = svc.UpdateProfile(ctx, c.ID, user.UpdateProfileInput{Address: strings.Repeat("x", 501)})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	clients := user.TypeClient
	only, err := svc.List(ctx, &clients)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, c.ID, only[0].ID)
}
