package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWT_RoundTrip(t *testing.T) {
	s := NewJWTService(testSecret, time.Hour)
	id := uuid.New()

	token, exp, err := s.Generate(id, "admin@filehub.io")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "admin@filehub.io", claims.Email)
	assert.Equal(t, id.String(), claims.Subject)
}

func TestJWT_Expired(t *testing.T) {
	s := NewJWTService(testSecret, time.Minute)
	token, _, err := s.Generate(uuid.New(), "a@b.co")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.Verify(token)
	assert.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, _, err := NewJWTService(testSecret, time.Hour).Generate(uuid.New(), "a@b.co")
	require.NoError(t, err)

	_, err = NewJWTService("another-secret-another-secret-xx", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	claims := JWTClaims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).Verify(token)
	assert.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewJWTService(testSecret, time.Hour).Verify(none)
	assert.Error(t, err)
}

func TestJWT_RequiresUserID(t *testing.T) {
	s := NewJWTService(testSecret, time.Hour)
	token, _, err := s.Generate(uuid.Nil, "a@b.co")
	require.NoError(t, err)
	_, err = s.Verify(token)
	assert.Error(t, err)
}
