package cache

// Verification code storage.
//
// Code:        drifty:verify:{phoneHash}     TTL: VERIFY_CODE_TTL_SECONDS
// Daily count: drifty:verify:count:{phoneHash}:{date}  expires at local midnight

import (
	"context"
	"time"

	"drifty/config"
	"drifty/storage/redis"
)

const verify = "verify"

// SetCode stores the active verification code for a phone hash,
// replacing any previous one.
func SetCode(ctx context.Context, phoneHash, code string) error {
	key := redis.Key(verify, phoneHash)
	ttl := time.Duration(config.Cfg.VerifyCodeTTLSeconds) * time.Second

	return redis.Client().Set(ctx, key, code, ttl).Err()
}

func GetCode(ctx context.Context, phoneHash string) (string, error) {
	key := redis.Key(verify, phoneHash)
	return redis.Client().Get(ctx, key).Result()
}

func DeleteCode(ctx context.Context, phoneHash string) error {
	key := redis.Key(verify, phoneHash)
	return redis.Client().Del(ctx, key).Err()
}

// IncrSendCount bumps today's send counter for a phone hash and
// returns the new value. The first bump of the day arms expiry at the
// next midnight.
func IncrSendCount(ctx context.Context, phoneHash string) (int, error) {
	now := time.Now()
	date := now.Format("2006-01-02")
	key := redis.Key(verify, "count", phoneHash, date)

	count, err := redis.Client().Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		redis.Client().Expire(ctx, key, tomorrow.Sub(now))
	}

	return int(count), nil
}
