package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
	calls int
}

func (s *countingSource) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (s *countingSource) ListActiveClients(context.Context) ([]user.User, error) {
	return nil, nil
}

func TestUserCache_HitAfterMiss(t *testing.T) {
	id := uuid.New()
	src := &countingSource{users: map[uuid.UUID]*user.User{id: {ID: id, Email: "a@b.co"}}}
	c := NewUserCache(src, 10, time.Minute)

	for i := 0; i < 3; i++ {
		u, err := c.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "a@b.co", u.Email)
	}
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, c.Len())
}

func TestUserCache_ErrorsNotCached(t *testing.T) {
	src := &countingSource{users: map[uuid.UUID]*user.User{}}
	c := NewUserCache(src, 10, time.Minute)
	id := uuid.New()

	_, err := c.GetByID(context.Background(), id)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	_, err = c.GetByID(context.Background(), id)
	assert.Error(t, err)
	assert.Equal(t, 2, src.calls)
	assert.Zero(t, c.Len())
}

func TestUserCache_Invalidate(t *testing.T) {
	id := uuid.New()
	src := &countingSource{users: map[uuid.UUID]*user.User{id: {ID: id}}}
	c := NewUserCache(src, 10, time.Minute)

	_, _ = c.GetByID(context.Background(), id)
	c.Invalidate(id)
	_, _ = c.GetByID(context.Background(), id)
	assert.Equal(t, 2, src.calls)
}

func TestUserCache_Expiry(t *testing.T) {
	id := uuid.New()
	src := &countingSource{users: map[uuid.UUID]*user.User{id: {ID: id}}}
	c := NewUserCache(src, 10, 20*time.Millisecond)

	_, _ = c.GetByID(context.Background(), id)
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func BenchmarkUserCacheGetParallel(b *testing.B) {
	src := &countingSource{users: map[uuid.UUID]*user.User{}}
	ids := make([]uuid.UUID, 1000)
	for i := range ids {
		ids[i] = uuid.New()
		src.users[ids[i]] = &user.User{ID: ids[i], Email: fmt.Sprintf("u%d@x.io", i)}
	}
	c := NewUserCache(src, len(ids), time.Minute)
	for _, id := range ids {
		_, _ = c.GetByID(context.Background(), id)
	}

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = c.GetByID(context.Background(), ids[i%len(ids)])
			i++
		}
	})
}
