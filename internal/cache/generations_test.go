package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestLocalGenerations(t *testing.T) {
	ctx := context.Background()
	gens := NewLocalGenerations()

	n, err := gens.Current(ctx, domain.TenantSabi)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = gens.Bump(ctx, domain.TenantSabi)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, _ = gens.Current(ctx, domain.TenantSabi)
	assert.Equal(t, int64(1), n)

	n, _ = gens.Current(ctx, domain.TenantTrace)
	assert.Equal(t, int64(0), n)
}

func TestLocalGenerations_ConcurrentBumps(t *testing.T) {
	ctx := context.Background()
	gens := NewLocalGenerations()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = gens.Bump(ctx, domain.TenantKatsu)
		}()
	}
	wg.Wait()

	n, err := gens.Current(ctx, domain.TenantKatsu)
	require.NoError(t, err)
	assert.Equal(t, int64(50), n)
}

func TestRedisGenerations(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	gens := NewRedisGenerations(client)

	n, err := gens.Current(ctx, domain.TenantSabi)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = gens.Bump(ctx, domain.TenantSabi)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = gens.Bump(ctx, domain.TenantSabi)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stored, err := mr.Get("shopdesk:kb:generation:sabi")
	require.NoError(t, err)
	assert.Equal(t, "2", stored)

	n, err = gens.Current(ctx, domain.TenantTrace)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRedisGenerations_SharedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)

	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer other.Close()

	writer := NewRedisGenerations(client)
	reader := NewRedisGenerations(other)

	_, err := writer.Bump(ctx, domain.TenantTrace)
	require.NoError(t, err)

	n, err := reader.Current(ctx, domain.TenantTrace)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisGenerations_ServerDown(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	gens := NewRedisGenerations(client)

	mr.Close()

	_, err := gens.Current(ctx, domain.TenantSabi)
	assert.Error(t, err)

	_, err = gens.Bump(ctx, domain.TenantSabi)
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(ctx, "not a url")
	assert.Error(t, err)
}
