package uniqueness

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "drifty/pkg/errors"
	storageredis "drifty/storage/redis"
)

func runCheckerContract(t *testing.T, checker Checker) {
	ctx := context.Background()

	t.Run("unclaimed name is available", func(t *testing.T) {
		available, err := checker.CheckAvailable(ctx, "drifter")
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("claim then check", func(t *testing.T) {
		require.NoError(t, checker.Claim(ctx, "drifter", "u1"))

		available, err := checker.CheckAvailable(ctx, "drifter")
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("reclaiming own name is fine", func(t *testing.T) {
		assert.NoError(t, checker.Claim(ctx, "drifter", "u1"))
	})

	t.Run("claiming someone else's name fails", func(t *testing.T) {
		assert.ErrorIs(t, checker.Claim(ctx, "drifter", "u2"), pkgerrors.UsernameTaken)
	})

	t.Run("other names unaffected", func(t *testing.T) {
		available, err := checker.CheckAvailable(ctx, "drifter2")
		require.NoError(t, err)
		assert.True(t, available)
	})
}

func TestMemoryChecker(t *testing.T) {
	runCheckerContract(t, NewMemoryChecker())
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	storageredis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	runCheckerContract(t, NewRedisChecker())
}

func TestRedisCheckerConcurrentClaim(t *testing.T) {
	mr := miniredis.RunT(t)
	storageredis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	checker := NewRedisChecker()
	ctx := context.Background()

	errA := checker.Claim(ctx, "contested", "uA")
	errB := checker.Claim(ctx, "contested", "uB")

	// Exactly one claimant wins.
	if errA == nil {
		assert.ErrorIs(t, errB, pkgerrors.UsernameTaken)
	} else {
		assert.NoError(t, errB)
	}
}
