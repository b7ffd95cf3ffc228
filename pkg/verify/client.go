package verify

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

// Client is the verification service: it sends a one-time code to a
// phone number and returns a confirmation handle to complete sign-in
// with.
type Client interface {
	// SendCode delivers a code to phoneNumber (full number with dial
	// code). challengeToken is the bot-mitigation proof. The returned
	// confirmation supersedes any earlier one for the same number.
	SendCode(ctx context.Context, phoneNumber, challengeToken string) (*Confirmation, error)
}

// confirmer completes a confirmation against the backend that issued
// it.
type confirmer interface {
	confirm(ctx context.Context, conf *Confirmation, code string) (*model.Identity, error)
}

// Confirmation is the opaque handle returned by SendCode. It confirms
// at most once; issuing a new code for the same number kills it.
type Confirmation struct {
	ID    string
	Phone string

	backend confirmer

	mu       sync.Mutex
	identity *model.Identity
}

// Confirm completes verification with the entered code. After a
// success the handle is spent: repeat calls return the same identity
// without touching the backend.
func (c *Confirmation) Confirm(ctx context.Context, code string) (*model.Identity, error) {
	c.mu.Lock()
	if c.identity != nil {
		id := c.identity
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	identity, err := c.backend.confirm(ctx, c, code)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()
	return identity, nil
}

var (
	verifyClient Client
	verifyOnce   sync.Once
	verifyErr    error
)

// Init picks the verification provider per config.
func Init() error {
	verifyOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.VerifyProvider {
		case "hosted":
			verifyClient = NewHostedClient()
		case "mock":
			verifyClient = NewMockClient(cfg.VerifyMockCode)
		default:
			verifyErr = fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedVerifyProvider, cfg.VerifyProvider)
		}

		if verifyErr != nil {
			logger.Logger.Error("Failed to initialize verification client", zap.Error(verifyErr))
			return
		}

		logger.Logger.Info("Verification client initialized",
			zap.String("provider", cfg.VerifyProvider),
		)
	})

	return verifyErr
}

func GetClient() Client {
	if verifyClient == nil {
		panic("Verification client not initialized, call verify.Init() first")
	}
	return verifyClient
}

// SetClient installs a specific client; tests use it.
func SetClient(c Client) {
	verifyOnce.Do(func() {})
	verifyClient = c
	verifyErr = nil
}

// plausiblePhone is the provider-side sanity check on the full
// number: leading +, then 8 to 15 digits.
func plausiblePhone(phoneNumber string) bool {
	if len(phoneNumber) < 9 || len(phoneNumber) > 16 || phoneNumber[0] != '+' {
		return false
	}
	for _, r := range phoneNumber[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
