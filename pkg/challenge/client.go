package challenge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"drifty/config"
	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/logger"
)

// Client verifies a bot-mitigation challenge token before a code send
// is allowed.
type Client interface {
	// Verify checks the token produced by the challenge widget for
	// the given scene.
	Verify(ctx context.Context, token, scene string) (bool, error)
}

var (
	mu     sync.Mutex
	client Client
)

// Init creates the challenge client for a verification attempt
// session. Called once per attempt; Reset must be called when the
// attempt is discarded so widget state doesn't leak into the next one.
func Init() error {
	mu.Lock()
	defer mu.Unlock()

	if client != nil {
		return nil
	}

	cfg := config.Cfg

	var err error
	switch cfg.ChallengeProvider {
	case "aliyun":
		client, err = NewAliyunClient()
	case "mock":
		client = &MockClient{}
	default:
		err = fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedChallengeProvider, cfg.ChallengeProvider)
	}

	if err != nil {
		logger.Logger.Error("Failed to initialize challenge client", zap.Error(err))
		return err
	}

	logger.Logger.Info("Challenge client initialized",
		zap.String("provider", cfg.ChallengeProvider),
	)
	return nil
}

// Reset tears the client down. The next Init builds a fresh one.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	client = nil
}

func GetClient() Client {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		panic("Challenge client not initialized, call challenge.Init() first")
	}
	return client
}

// SetClient installs a specific client; tests use it.
func SetClient(c Client) {
	mu.Lock()
	defer mu.Unlock()
	client = c
}

func Verify(ctx context.Context, token, scene string) (bool, error) {
	return GetClient().Verify(ctx, token, scene)
}
