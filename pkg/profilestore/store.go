package profilestore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"drifty/config"
	"drifty/internal/model"
	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/logger"
)

// Store is the profile persistence boundary. Get returns (nil, nil)
// when no record exists; Save merges — zero-valued fields of the
// partial never clobber what is stored.
type Store interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Save(ctx context.Context, uid string, partial model.Profile) error
}

var (
	store     Store
	storeOnce sync.Once
	storeErr  error
)

// Init picks the backend per config.
func Init() error {
	storeOnce.Do(func() {
		switch config.Cfg.ProfileStore {
		case "redis":
			store = NewRedisStore()
		case "memory":
			store = NewMemoryStore()
		default:
			storeErr = fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedProfileStore, config.Cfg.ProfileStore)
		}

		if storeErr != nil {
			logger.Logger.Error("Failed to initialize profile store", zap.Error(storeErr))
			return
		}

		logger.Logger.Info("Profile store initialized",
			zap.String("backend", config.Cfg.ProfileStore),
		)
	})

	return storeErr
}

func GetStore() Store {
	if store == nil {
		panic("Profile store not initialized, call profilestore.Init() first")
	}
	return store
}

// SetStore installs a specific backend; tests use it.
func SetStore(s Store) {
	storeOnce.Do(func() {})
	store = s
	storeErr = nil
}
