package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	ri "github.com/redis/go-redis/v9"

	"drifty/internal/model"
	"drifty/storage/redis"
)

// Profile records: drifty:profile:{uid}, JSON blob, no TTL.

// RedisStore keeps one JSON profile record per uid.
type RedisStore struct{}

func NewRedisStore() *RedisStore {
	return &RedisStore{}
}

func (s *RedisStore) Get(ctx context.Context, uid string) (*model.Profile, error) {
	key := redis.Key("profile", uid)

	raw, err := redis.Client().Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, ri.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile model.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return &profile, nil
}

func (s *RedisStore) Save(ctx context.Context, uid string, partial model.Profile) error {
	existing, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}

	merged := partial
	if existing != nil {
		merged = existing.Merge(partial)
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	key := redis.Key("profile", uid)
	if err := redis.Client().Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}
