package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type redisClient interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Close() error
}

// RedisSource reads ranges from a Redis list, head to tail.
type RedisSource struct {
	rdb redisClient
	key string
}

// NewRedisSource connects to the Redis server at url, e.g.
// "redis://localhost:6379/0".
func NewRedisSource(url, key string) (*RedisSource, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &RedisSource{rdb: redis.NewClient(opts), key: key}, nil
}

func (s *RedisSource) Ranges(ctx context.Context) ([]string, error) {
	vals, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read list %q: %w", s.key, err)
	}

	ranges := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			ranges = append(ranges, v)
		}
	}
	return ranges, nil
}

func (s *RedisSource) Close() error {
	return s.rdb.Close()
}
