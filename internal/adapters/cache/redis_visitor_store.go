package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const visitorKey = "store:visitors"

// RedisVisitorStore tracks live presence in a sorted set scored by the
// last heartbeat. Stale members are trimmed on every touch so the set
// never grows past the active window.
type RedisVisitorStore struct {
	client *redis.Client
}

func NewRedisVisitorStore(client *redis.Client) *RedisVisitorStore {
	return &RedisVisitorStore{client: client}
}

func (s *RedisVisitorStore) Touch(ctx context.Context, visitorID string, at time.Time) error {
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, visitorKey, redis.Z{Score: float64(at.Unix()), Member: visitorID})
	pipe.ZRemRangeByScore(ctx, visitorKey, "-inf", strconv.FormatInt(at.Add(-10*time.Minute).Unix(), 10))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisVisitorStore) ActiveCount(ctx context.Context, since time.Time) (int, error) {
	n, err := s.client.ZCount(ctx, visitorKey, strconv.FormatInt(since.Unix(), 10), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
