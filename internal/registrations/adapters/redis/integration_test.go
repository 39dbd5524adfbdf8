//go:build integration

package redis_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"kioskreg/internal/registrations/adapters/redis"
	pkgredis "kioskreg/pkg/db/redis"
)

func TestIdempotencyStoreAgainstRedis(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	host, portStr, _ := strings.Cut(endpoint, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := pkgredis.NewClient(ctx, &pkgredis.Config{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewIdempotencyStore(client, prefix, time.Minute)

	reserved, id, err := store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, id)

	reserved, id, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, id)

	require.NoError(t, store.Complete(ctx, "key-1", "reg-1"))

	reserved, id, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "reg-1", id)

	require.NoError(t, store.Release(ctx, "key-1"))
	reserved, _, err = store.Reserve(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, reserved)
}
