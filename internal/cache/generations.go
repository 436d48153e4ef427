// Package cache holds the knowledge base invalidation counters.
//
// A generation is a per-tenant counter that is bumped whenever the tenant's
// documents change. Index caches compare the generation they were built at
// with the current one to decide whether to look at the documents again.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

const generationPrefix = "shopdesk:kb:generation:"

// LocalGenerations keeps generations in process memory. It is used when no
// Redis is configured and only one instance serves a tenant.
type LocalGenerations struct {
	mu   sync.Mutex
	gens map[domain.Tenant]int64
}

// NewLocalGenerations creates an empty in-memory generation store
func NewLocalGenerations() *LocalGenerations {
	return &LocalGenerations{gens: make(map[domain.Tenant]int64)}
}

// Current returns the tenant's generation, zero if it was never bumped
func (g *LocalGenerations) Current(_ context.Context, tenant domain.Tenant) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[tenant], nil
}

// Bump increments the tenant's generation and returns the new value
func (g *LocalGenerations) Bump(_ context.Context, tenant domain.Tenant) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[tenant]++
	return g.gens[tenant], nil
}

// RedisGenerations shares generations between instances through Redis so an
// upload on one instance invalidates the index on all of them.
type RedisGenerations struct {
	client *redis.Client
}

// NewRedisGenerations creates a Redis-backed generation store
func NewRedisGenerations(client *redis.Client) *RedisGenerations {
	return &RedisGenerations{client: client}
}

// Current returns the tenant's generation, zero if the key does not exist
func (g *RedisGenerations) Current(ctx context.Context, tenant domain.Tenant) (int64, error) {
	n, err := g.client.Get(ctx, generationKey(tenant)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return n, nil
}

// Bump atomically increments the tenant's generation
func (g *RedisGenerations) Bump(ctx context.Context, tenant domain.Tenant) (int64, error) {
	n, err := g.client.Incr(ctx, generationKey(tenant)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr generation: %w", err)
	}
	return n, nil
}

func generationKey(tenant domain.Tenant) string {
	return generationPrefix + string(tenant)
}

// NewRedisClient parses a redis:// URL and verifies the server is reachable
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
