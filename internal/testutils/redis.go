// Package testutils provides shared test helpers, notably in-memory Redis.
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/greyhelm/vtt-api/internal/redis"
)

// CreateTestRedisClient creates an in-memory Redis client for testing.
// The returned cleanup shuts the server down.
func CreateTestRedisClient(t *testing.T) (redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to create miniredis")

	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")

	return client, mr.Close
}
