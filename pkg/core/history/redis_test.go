package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Redis tests need a live server; set REDIS_ADDRESS to run them.
func redisAddress(t *testing.T) string {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set; skipping Redis tests")
	}
	return addr
}

func TestRedisStore(t *testing.T) {
	addr := redisAddress(t)
	key := "subsubs:test:" + t.Name()

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		client.Del(context.Background(), key)
		client.Close()
	})

	s := NewRedisStore(client, key, discardLogger())
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	_, err := s.Append(ctx, sampleEntry("older", base))
	require.NoError(t, err)
	newer, err := s.Append(ctx, sampleEntry("newer", base.Add(time.Minute)))
	require.NoError(t, err)

	entries, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, "older", entries[1].Title)
}

func TestRedisProviderFromRegistry(t *testing.T) {
	addr := redisAddress(t)

	s, err := New("redis", ProviderConfig{RedisAddress: addr, RedisKey: "subsubs:test:registry", Logger: discardLogger()})
	require.NoError(t, err)
	defer s.Close()

	entries, err := s.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, entries)
}
