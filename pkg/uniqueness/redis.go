package uniqueness

import (
	"context"
	"errors"
	"fmt"

	ri "github.com/redis/go-redis/v9"

	pkgerrors "drifty/pkg/errors"
	"drifty/storage/redis"
)

// Username claims: drifty:username:{name} -> uid, no TTL.

type RedisChecker struct{}

func NewRedisChecker() *RedisChecker {
	return &RedisChecker{}
}

func (c *RedisChecker) CheckAvailable(ctx context.Context, username string) (bool, error) {
	key := redis.Key("username", username)

	_, err := redis.Client().Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, ri.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check username: %w", err)
	}

	return false, nil
}

func (c *RedisChecker) Claim(ctx context.Context, username, uid string) error {
	key := redis.Key("username", username)

	ok, err := redis.Client().SetNX(ctx, key, uid, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim username: %w", err)
	}
	if ok {
		return nil
	}

	owner, err := redis.Client().Get(ctx, key).Result()
	if err == nil && owner == uid {
		return nil
	}
	return pkgerrors.UsernameTaken
}
