package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"filehub/internal/audit"
	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/password"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type credentialStore struct {
	users     map[string]*user.User
	lastLogin map[uuid.UUID]time.Time
}

func (s *credentialStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (s *credentialStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

func newAuthService(t *testing.T) (*Service, *credentialStore, *recorder) {
	t.Helper()
	hasher := password.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("Admin123!")
	require.NoError(t, err)

	store := &credentialStore{
		users: map[string]*user.User{
			"admin":    {ID: uuid.New(), Email: "admin@filehub.io", PasswordHash: hash, IsActive: true},
			"disabled": {ID: uuid.New(), Email: "gone@filehub.io", PasswordHash: hash, IsActive: false},
		},
		lastLogin: map[uuid.UUID]time.Time{},
	}
	rec := &recorder{}
	return NewService(store, hasher, NewJWTService(testSecret, time.Hour), rec, nil), store, rec
}

func TestLogin_Success(t *testing.T) {
	s, store, rec := newAuthService(t)

	res, err := s.Login(context.Background(), LoginInput{Email: " Admin@FileHub.io ", Password: "Admin123!", IPAddress: "10.1.1.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotNil(t, res.User.LastLoginAt)
	assert.Contains(t, store.lastLogin, store.users["admin"].ID)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionLogin, rec.entries[0].Action)
	assert.Empty(t, rec.entries[0].Failure)
	assert.Equal(t, "10.1.1.1", rec.entries[0].IPAddress)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name  string
		email string
		pass  string
		want  error
	}{
		{"unknown email", "who@filehub.io", "Admin123!", apperrors.ErrInvalidCredentials},
		{"wrong password", "admin@filehub.io", "nope", apperrors.ErrInvalidCredentials},
		{"disabled", "gone@filehub.io", "Admin123!", apperrors.ErrAccountDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store, rec := newAuthService(t)
			_, err := s.Login(context.Background(), LoginInput{Email: tt.email, Password: tt.pass})
			assert.True(t, apperrors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, store.lastLogin)

			require.Len(t, rec.entries, 1)
			assert.Equal(t, audit.ActionLogin, rec.entries[0].Action)
			assert.NotEmpty(t, rec.entries[0].Failure)
		})
	}
}

func TestLogout(t *testing.T) {
	s, _, rec := newAuthService(t)
	id := uuid.New()
	s.Logout(context.Background(), id, "u@filehub.io", "1.2.3.4", "ua")

	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionLogout, rec.entries[0].Action)
	assert.Equal(t, id.String(), rec.entries[0].UserID)
}
