package uniqueness

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"drifty/config"
	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/logger"
)

// Checker is the username uniqueness service. CheckAvailable has no
// ordering guarantee between concurrent calls; callers own staleness
// handling. Claim is first-writer-wins, re-claiming your own name is
// fine.
type Checker interface {
	CheckAvailable(ctx context.Context, username string) (bool, error)
	Claim(ctx context.Context, username, uid string) error
}

var (
	checker     Checker
	checkerOnce sync.Once
	checkerErr  error
)

// Init picks the backend per config; it follows the profile store's
// backend choice since both live in the same place.
func Init() error {
	checkerOnce.Do(func() {
		switch config.Cfg.ProfileStore {
		case "redis":
			checker = NewRedisChecker()
		case "memory":
			checker = NewMemoryChecker()
		default:
			checkerErr = fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedProfileStore, config.Cfg.ProfileStore)
		}

		if checkerErr != nil {
			logger.Logger.Error("Failed to initialize uniqueness checker", zap.Error(checkerErr))
			return
		}

		logger.Logger.Info("Uniqueness checker initialized",
			zap.String("backend", config.Cfg.ProfileStore),
		)
	})

	return checkerErr
}

func GetChecker() Checker {
	if checker == nil {
		panic("Uniqueness checker not initialized, call uniqueness.Init() first")
	}
	return checker
}

// SetChecker installs a specific backend; tests use it.
func SetChecker(c Checker) {
	checkerOnce.Do(func() {})
	checker = c
	checkerErr = nil
}
