//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/POS-api/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

type row struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

func TestReportCache_GenerationInvalidation(t *testing.T) {
	ctx := context.Background()
	rdb, err := cache.NewRedis(ctx, startRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := cache.NewReportCache(rdb, time.Minute, "test:reports")

	var got []row
	hit, err := c.Get(ctx, "daily:2024-05-01:2024-05-31", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "daily:2024-05-01:2024-05-31", []row{{Name: "2024-05-10", Total: "70"}}))
	hit, err = c.Get(ctx, "daily:2024-05-01:2024-05-31", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, "70", got[0].Total)

	require.NoError(t, c.Invalidate(ctx))
	hit, err = c.Get(ctx, "daily:2024-05-01:2024-05-31", &got)
	require.NoError(t, err)
	assert.False(t, hit, "tras invalidar la generación cambia")
}

func TestNewRedis_BadURL(t *testing.T) {
	_, err := cache.NewRedis(context.Background(), "://no-es-url")
	assert.Error(t, err)
}
