package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "room:"

// RedisStore keeps session records in Redis, one key per room.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, roomID string, data []byte, pinned bool) error {
	ttl := time.Duration(0)
	if !pinned {
		ttl = SessionTTLHours * time.Hour
	}
	if err := s.rdb.Set(ctx, keyPrefix+roomID, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", roomID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, roomID string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+roomID).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", roomID, err)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, roomID string) error {
	if err := s.rdb.Del(ctx, keyPrefix+roomID).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", roomID, err)
	}
	return nil
}

func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val()[len(keyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return out, nil
}
