package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/infrastructure/cache"
	"github.com/jhoicas/medequipos-api/pkg/config"
)

func newCache(t *testing.T) *cache.RedisStatsCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR no definido")
	}
	rdb, err := cache.NewRedis(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewRedisStatsCache(rdb)
}

func TestRedisStatsCache_SetGet(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	key := "test:stats:" + uuid.NewString()

	var out dto.LedgerStatsResponse
	ok, err := c.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, ok)

	in := dto.LedgerStatsResponse{Hoy: []dto.RollupResponse{{Tipo: "salida", Cantidad: 2, Unidades: 13}}}
	require.NoError(t, c.Set(ctx, key, in, time.Minute))

	ok, err = c.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in.Hoy, out.Hoy)
}

func TestRedisStatsCache_Vence(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	key := "test:stats:" + uuid.NewString()

	require.NoError(t, c.Set(ctx, key, map[string]int{"n": 1}, 50*time.Millisecond))
	time.Sleep(120 * time.Millisecond)

	var out map[string]int
	ok, err := c.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatsCache_SinServidor(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	c := cache.NewRedisStatsCache(rdb)

	var out map[string]int
	ok, err := c.Get(context.Background(), "x", &out)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(context.Background(), "x", 1, time.Second))

	_, err = cache.NewRedis(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
