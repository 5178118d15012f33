package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// RedisSessionStore keeps opaque customer session tokens with TTL.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Put(ctx context.Context, token string, data ports.SessionData, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "store:session:"+token, raw, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*ports.SessionData, error) {
	raw, err := s.client.Get(ctx, "store:session:"+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var data ports.SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, "store:session:"+token).Err()
}

// RedisAdminSessionStore keeps admin console tokens in a namespace
// separate from customer sessions.
type RedisAdminSessionStore struct {
	client *redis.Client
}

func NewRedisAdminSessionStore(client *redis.Client) *RedisAdminSessionStore {
	return &RedisAdminSessionStore{client: client}
}

func (s *RedisAdminSessionStore) Put(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, "store:admin:"+token, "1", ttl).Err()
}

func (s *RedisAdminSessionStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, "store:admin:"+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisAdminSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, "store:admin:"+token).Err()
}
