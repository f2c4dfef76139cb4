//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"censusdesk/internal/platform/redis"
)

// RedisContainer backs profile cache tests.
type RedisContainer struct {
	Container testcontainers.Container
	Client    *redis.Client
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "start redis")

	url, err := container.ConnectionString(ctx)
	var client *redis.Client
	if err == nil {
		client, err = redis.New(ctx, redis.Config{URL: url, PoolSize: 5})
	}
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "connect redis")
	}
	return &RedisContainer{Container: container, Client: client}
}

func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
