package uniqueness

import (
	"context"
	"sync"

	pkgerrors "drifty/pkg/errors"
)

// MemoryChecker is the in-process backend for development and tests.
type MemoryChecker struct {
	mu     sync.Mutex
	claims map[string]string // username -> uid

	// CheckErr makes the next CheckAvailable fail with it, then
	// resets.
	CheckErr error
}

func NewMemoryChecker() *MemoryChecker {
	return &MemoryChecker{
		claims: make(map[string]string),
	}
}

// Preclaim seeds a taken username. Tests use it.
func (c *MemoryChecker) Preclaim(username, uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claims[username] = uid
}

func (c *MemoryChecker) CheckAvailable(ctx context.Context, username string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.CheckErr != nil {
		err := c.CheckErr
		c.CheckErr = nil
		return false, err
	}

	_, taken := c.claims[username]
	return !taken, nil
}

func (c *MemoryChecker) Claim(ctx context.Context, username, uid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, taken := c.claims[username]
	if taken && owner != uid {
		return pkgerrors.UsernameTaken
	}
	c.claims[username] = uid
	return nil
}
