// Package cache keeps short-lived copies of hot lookups in memory.
package cache

import (
	"context"
	"time"

	"filehub/internal/domain/user"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	userCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "filehub",
		Name:      "user_cache_hits_total",
		Help:      "User lookups served from the in-memory cache.",
	})
	userCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "filehub",
		Name:      "user_cache_misses_total",
		Help:      "User lookups that went to the database.",
	})
)

// UserSource is the authoritative user lookup.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListActiveClients(ctx context.Context) ([]user.User, error)
}

// UserCache fronts a UserSource with an LRU whose entries expire after ttl.
// Every request resolves its caller, so the hit rate is high; role or
// activation changes become visible after at most ttl unless Invalidate is
// called. Errors are never cached.
type UserCache struct {
	source UserSource
	lru    *expirable.LRU[uuid.UUID, *user.User]
}

func NewUserCache(source UserSource, size int, ttl time.Duration) *UserCache {
	return &UserCache{
		source: source,
		lru:    expirable.NewLRU[uuid.UUID, *user.User](size, nil, ttl),
	}
}

func (c *UserCache) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := c.lru.Get(id); ok {
		userCacheHits.Inc()
		return u, nil
	}
	userCacheMisses.Inc()

	u, err := c.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.lru.Add(id, u)
	return u, nil
}

// ListActiveClients is not cached.
func (c *UserCache) ListActiveClients(ctx context.Context) ([]user.User, error) {
	return c.source.ListActiveClients(ctx)
}

func (c *UserCache) Invalidate(id uuid.UUID) {
	c.lru.Remove(id)
}

func (c *UserCache) Len() int {
	return c.lru.Len()
}
