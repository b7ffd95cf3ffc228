package flow

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/uniqueness"
	"drifty/utils"
)

// UsernameStatus is the resolution state of the current candidate.
type UsernameStatus int

const (
	UsernameIdle UsernameStatus = iota
	UsernameInvalid
	UsernameChecking
	UsernameAvailable
	UsernameTaken
	UsernameCheckFailed
)

// UsernameChecker debounces availability lookups for a username
// candidate. Every keystroke bumps a generation counter; a lookup
// result is applied only when its generation is still the latest, so
// a slow response for an earlier candidate can never overwrite the
// verdict for the current one.
type UsernameChecker struct {
	mu sync.Mutex

	text    string
	status  UsernameStatus
	lastErr error

	generation uint64
	timer      *time.Timer
	debounce   time.Duration

	checker  uniqueness.Checker
	onChange func()
}

// NewUsernameChecker builds a checker. A zero debounce runs lookups
// immediately, which tests rely on.
func NewUsernameChecker(checker uniqueness.Checker, debounce time.Duration) *UsernameChecker {
	return &UsernameChecker{
		status:   UsernameIdle,
		debounce: debounce,
		checker:  checker,
	}
}

// SetOnChange registers a callback fired after an asynchronous lookup
// result lands. Keystroke-driven transitions are synchronous and do
// not fire it.
func (c *UsernameChecker) SetOnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *UsernameChecker) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *UsernameChecker) Status() UsernameStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *UsernameChecker) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SetText processes an edit to the candidate. Input is lowercased
// before anything else so availability is case-insensitive. Malformed
// candidates fail synchronously without touching the backend.
func (c *UsernameChecker) SetText(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s = strings.ToLower(strings.TrimSpace(s))
	c.text = s
	c.generation++
	c.stopTimerLocked()

	if s == "" {
		c.status = UsernameIdle
		c.lastErr = nil
		return
	}
	if err := utils.ValidateUsername(s); err != nil {
		c.status = UsernameInvalid
		c.lastErr = err
		return
	}

	c.status = UsernameChecking
	c.lastErr = nil

	gen := c.generation
	if c.debounce <= 0 {
		go c.lookup(gen, s)
		return
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.lookup(gen, s)
	})
}

func (c *UsernameChecker) lookup(gen uint64, name string) {
	available, err := c.checker.CheckAvailable(context.Background(), name)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		c.status = UsernameCheckFailed
		c.lastErr = err
	case available:
		c.status = UsernameAvailable
		c.lastErr = nil
	default:
		c.status = UsernameTaken
		c.lastErr = pkgerrors.UsernameTaken
	}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// CanSubmit reports whether the current candidate has resolved
// available.
func (c *UsernameChecker) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == UsernameAvailable
}

// Submit returns the resolved candidate. Submitting before the check
// resolves, or after it resolves unfavourably, is an error.
func (c *UsernameChecker) Submit() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case UsernameAvailable:
		return c.text, nil
	case UsernameTaken:
		return "", pkgerrors.UsernameTaken
	case UsernameInvalid:
		if c.lastErr != nil {
			if def, ok := c.lastErr.(pkgerrors.Definition); ok {
				return "", def
			}
		}
		return "", pkgerrors.UsernameCharset
	default:
		return "", pkgerrors.UsernameUnchecked
	}
}

// Reset clears the candidate and cancels any pending lookup.
func (c *UsernameChecker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.stopTimerLocked()
	c.text = ""
	c.status = UsernameIdle
	c.lastErr = nil
}

func (c *UsernameChecker) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
