package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// defaultRedisKey namespaces the log in Redis to avoid collisions.
const defaultRedisKey = "subsubs:history"

func init() {
	Register("redis", newRedisStore)
}

// RedisStore keeps the log in a single Redis sorted set.
//
// Each member is the JSON-encoded entry and its score is DownloadedAt in
// microseconds, so ZREVRANGE yields newest first. Members are unique because every
// entry carries a uuid.
type RedisStore struct {
	client *redis.Client
	key    string
	logger logrus.FieldLogger
}

func newRedisStore(cfg ProviderConfig) (Store, error) {
	if cfg.RedisAddress == "" {
		return nil, coreErrors.NewStoreError("open", fmt.Errorf("redis address is required"))
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, coreErrors.NewStoreError("open", fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddress, err))
	}

	return NewRedisStore(client, cfg.RedisKey, cfg.logger()), nil
}

// NewRedisStore wraps an existing client. An empty key uses "subsubs:history".
func NewRedisStore(client *redis.Client, key string, logger logrus.FieldLogger) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key, logger: orDiscard(logger)}
}

func (s *RedisStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	entry = prepare(entry)

	member, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, coreErrors.NewStoreError("append", err)
	}

	err = s.client.ZAdd(ctx, s.key, redis.Z{
		Score:  float64(entry.DownloadedAt.UnixMicro()),
		Member: string(member),
	}).Err()
	if err != nil {
		return Entry{}, coreErrors.NewStoreError("append", err)
	}
	return entry, nil
}

func (s *RedisStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	members, err := s.client.ZRevRange(ctx, s.key, 0, int64(ClampLimit(limit)-1)).Result()
	if err != nil {
		return nil, coreErrors.NewStoreError("list", err)
	}

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		var e Entry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			s.logger.WithError(err).WithField("key", s.key).Warn("Skipping undecodable history member")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
