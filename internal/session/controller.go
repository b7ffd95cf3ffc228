package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"drifty/internal/authstate"
	"drifty/internal/flow"
	"drifty/internal/model"
	"drifty/pkg/logger"
	"drifty/pkg/profilestore"
	"drifty/pkg/uniqueness"
)

// State is the controller's externally visible position: the derived
// stage plus whether a profile fetch is still in flight for the
// current identity.
type State struct {
	Stage   model.Stage
	Loading bool
}

// Controller owns the session: it subscribes to the identity stream,
// resolves the profile for each signed-in identity, derives the stage
// and drives the onboarding flows until the session is complete.
type Controller struct {
	mu sync.Mutex

	identity *model.Identity
	profile  *model.Profile
	loading  bool

	// failOpen marks a session whose profile could not be fetched;
	// it is treated as complete rather than locking the user out.
	failOpen bool

	// fetchGen invalidates an in-flight profile fetch when the
	// identity changes underneath it.
	fetchGen uint64

	wizard   *flow.OnboardingWizard
	username *flow.UsernameChecker

	provider    *authstate.Provider
	store       profilestore.Store
	checker     uniqueness.Checker
	unsubscribe func()

	settleDelay      time.Duration
	usernameDebounce time.Duration

	onChange func()
}

// Option tunes a Controller.
type Option func(*Controller)

// WithSettleDelay sets the pause between the final username save and
// the transition to ready, giving the store time to become read
// consistent.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) { c.settleDelay = d }
}

// WithUsernameDebounce sets the keystroke debounce for availability
// checks.
func WithUsernameDebounce(d time.Duration) Option {
	return func(c *Controller) { c.usernameDebounce = d }
}

func NewController(provider *authstate.Provider, store profilestore.Store, checker uniqueness.Checker, opts ...Option) *Controller {
	c := &Controller{
		provider:         provider,
		store:            store,
		checker:          checker,
		settleDelay:      100 * time.Millisecond,
		usernameDebounce: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnChange registers a callback fired after every state transition,
// including those caused by asynchronous fetch completion.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Start subscribes to the identity stream. The subscription delivers
// the current identity synchronously, so the controller is positioned
// before Start returns.
func (c *Controller) Start() {
	c.unsubscribe = c.provider.Subscribe(c.handleIdentity)
}

// Stop detaches from the identity stream.
func (c *Controller) Stop() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// State returns the current stage and loading flag.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Stage: c.stageLocked(), Loading: c.loading}
}

// Session snapshots the current session value.
func (c *Controller) Session() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.Session{
		Identity: c.identity,
		Profile:  c.profile,
		Stage:    c.stageLocked(),
	}
}

// Wizard returns the active onboarding wizard, nil outside the
// onboarding stages.
func (c *Controller) Wizard() *flow.OnboardingWizard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wizard
}

// Username returns the active username checker, nil outside the
// username stage.
func (c *Controller) Username() *flow.UsernameChecker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *Controller) stageLocked() model.Stage {
	if c.failOpen && c.identity != nil {
		return model.StageComplete
	}
	return model.DeriveStage(c.identity, c.profile)
}

func (c *Controller) handleIdentity(identity *model.Identity) {
	c.mu.Lock()
	c.fetchGen++
	gen := c.fetchGen

	if identity == nil {
		c.identity = nil
		c.profile = nil
		c.loading = false
		c.failOpen = false
		c.wizard = nil
		if c.username != nil {
			c.username.Reset()
			c.username = nil
		}
		fn := c.onChange
		c.mu.Unlock()
		c.notify(fn)
		return
	}

	c.identity = identity
	c.profile = nil
	c.loading = true
	c.failOpen = false
	fn := c.onChange
	c.mu.Unlock()
	c.notify(fn)

	go c.fetchProfile(gen, identity)
}

func (c *Controller) fetchProfile(gen uint64, identity *model.Identity) {
	profile, err := c.store.Get(context.Background(), identity.UID)

	c.mu.Lock()
	if gen != c.fetchGen {
		c.mu.Unlock()
		return
	}
	c.loading = false

	switch {
	case err != nil:
		// Fail open: an unreachable store must not lock a
		// returning user out of the app.
		logger.Logger.Error("Profile fetch failed, assuming onboarded",
			zap.String("uid", identity.UID), zap.Error(err))
		c.failOpen = true
	case profile == nil:
		c.wizard = flow.NewOnboardingWizard()
	case !model.UsernameWellFormed(profile.Username):
		c.profile = profile
		c.wizard = flow.NewOnboardingWizardFrom(profile)
	default:
		c.profile = profile
	}

	c.enterUsernameIfNeededLocked()
	fn := c.onChange
	c.mu.Unlock()
	c.notify(fn)
}

func (c *Controller) enterUsernameIfNeededLocked() {
	if c.stageLocked() == model.StageNoUsername && c.username == nil {
		c.username = flow.NewUsernameChecker(c.checker, c.usernameDebounce)
	}
}

// CompleteWizard submits the wizard, persists the draft and advances
// to username selection. The save is fire and forget; the wizard's
// values already live in memory and a lost write surfaces on the next
// sign-in as a rerun of onboarding.
func (c *Controller) CompleteWizard() error {
	c.mu.Lock()
	if c.wizard == nil || c.identity == nil {
		c.mu.Unlock()
		return nil
	}

	draft, err := c.wizard.Submit()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	uid := c.identity.UID
	merged := draft
	if c.profile != nil {
		merged = c.profile.Merge(draft)
	}
	c.profile = &merged
	c.enterUsernameIfNeededLocked()
	fn := c.onChange
	c.mu.Unlock()

	go func() {
		if err := c.store.Save(context.Background(), uid, draft); err != nil {
			logger.Logger.Error("Profile save failed",
				zap.String("uid", uid), zap.Error(err))
		}
	}()

	c.notify(fn)
	return nil
}

// SubmitUsername claims the resolved candidate, persists it and
// completes the session. The claim races other users; losing it
// surfaces as taken even though the availability check passed.
func (c *Controller) SubmitUsername(ctx context.Context) error {
	c.mu.Lock()
	checker := c.username
	identity := c.identity
	c.mu.Unlock()

	if checker == nil || identity == nil {
		return nil
	}

	candidate, err := checker.Submit()
	if err != nil {
		return err
	}

	if err := c.checker.Claim(ctx, candidate, identity.UID); err != nil {
		return err
	}
	if err := c.store.Save(ctx, identity.UID, model.Profile{Username: candidate}); err != nil {
		return err
	}

	// Let the store settle before re-deriving the stage so an
	// immediate re-read cannot bounce the user back into
	// onboarding.
	if c.settleDelay > 0 {
		select {
		case <-time.After(c.settleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	if c.identity == nil || c.identity.UID != identity.UID {
		c.mu.Unlock()
		return nil
	}
	if c.profile == nil {
		c.profile = &model.Profile{}
	}
	c.profile.Username = candidate
	c.wizard = nil
	c.username = nil
	fn := c.onChange
	c.mu.Unlock()

	c.notify(fn)
	return nil
}

// BackFromUsername returns to the wizard's last step. The username
// candidate is discarded; the wizard's values are untouched.
func (c *Controller) BackFromUsername() {
	c.mu.Lock()
	if c.username != nil {
		c.username.Reset()
	}
	if c.wizard == nil {
		c.wizard = flow.NewOnboardingWizardFrom(c.profile)
	}
	fn := c.onChange
	c.mu.Unlock()
	c.notify(fn)
}

// SignOut publishes a nil identity; the subscription handler clears
// all session state in response.
func (c *Controller) SignOut() {
	c.provider.SignOut()
}

func (c *Controller) notify(fn func()) {
	if fn != nil {
		fn()
	}
}
