package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drifty/internal/authstate"
	"drifty/internal/model"
	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/profilestore"
	"drifty/pkg/uniqueness"
)

type fixture struct {
	provider   *authstate.Provider
	store      *profilestore.MemoryStore
	checker    *uniqueness.MemoryChecker
	controller *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		provider: authstate.NewProvider(),
		store:    profilestore.NewMemoryStore(),
		checker:  uniqueness.NewMemoryChecker(),
	}
	f.controller = NewController(f.provider, f.store, f.checker,
		WithSettleDelay(0),
		WithUsernameDebounce(0),
	)
	f.controller.Start()
	t.Cleanup(f.controller.Stop)

	return f
}

func (f *fixture) signIn() *model.Identity {
	identity := &model.Identity{UID: "u1", PhoneNumber: "+919876543210", Token: "t"}
	f.provider.Emit(identity)
	return identity
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.State() == want
	}, time.Second, 5*time.Millisecond)
}

func TestControllerStartsAnonymous(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, State{Stage: model.StageNoIdentity}, f.controller.State())
	assert.Nil(t, f.controller.Wizard())
	assert.Nil(t, f.controller.Username())
}

func TestControllerFreshUserGetsWizard(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	waitForState(t, f.controller, State{Stage: model.StageNoProfile})
	require.NotNil(t, f.controller.Wizard())
	assert.Nil(t, f.controller.Username())
}

func TestControllerReturningUserWithoutUsername(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(context.Background(), "u1", model.Profile{
		FirstName: "Asha",
		LastName:  "Rao",
		Gender:    model.GenderFemale,
		BirthDate: time.Date(2000, time.February, 28, 0, 0, 0, 0, time.UTC),
	}))

	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageNoUsername})

	require.NotNil(t, f.controller.Username())

	// The wizard is pre-seeded in case the user walks back.
	wizard := f.controller.Wizard()
	require.NotNil(t, wizard)
	first, _ := wizard.Name()
	assert.Equal(t, "Asha", first)
}

func TestControllerCompleteUserGoesStraightToReady(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(context.Background(), "u1", model.Profile{
		FirstName: "Asha",
		Username:  "asha_22",
	}))

	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageComplete})
	assert.Nil(t, f.controller.Username())
}

func TestControllerFetchErrorFailsOpen(t *testing.T) {
	f := newFixture(t)
	f.store.FailGets = true
	f.store.SetFailure(errors.New("store unreachable"))

	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageComplete})

	snap := f.controller.Session()
	assert.Nil(t, snap.Profile)
	assert.Equal(t, model.StageComplete, snap.Stage)
}

func TestControllerSignOutClearsEverything(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageNoProfile})

	f.controller.SignOut()
	waitForState(t, f.controller, State{Stage: model.StageNoIdentity})
	assert.Nil(t, f.controller.Wizard())
	assert.Nil(t, f.controller.Username())
	assert.Nil(t, f.controller.Session().Identity)
}

func TestControllerIdentitySwitchDiscardsStaleFetch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(context.Background(), "u2", model.Profile{Username: "second"}))

	f.signIn()
	f.provider.Emit(&model.Identity{UID: "u2", PhoneNumber: "+12025550123", Token: "t2"})

	waitForState(t, f.controller, State{Stage: model.StageComplete})
	snap := f.controller.Session()
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "u2", snap.Identity.UID)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "second", snap.Profile.Username)
}

func completeWizard(t *testing.T, f *fixture) {
	t.Helper()

	wizard := f.controller.Wizard()
	require.NotNil(t, wizard)
	wizard.SetName("Asha", "Rao")
	require.NoError(t, wizard.NextFromName())
	require.NoError(t, wizard.SelectGender(model.GenderFemale))
	wizard.SetBirthDate(28, 2, 2000)
	require.NoError(t, f.controller.CompleteWizard())
}

func TestControllerWizardCompletionAdvancesToUsername(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageNoProfile})

	completeWizard(t, f)

	assert.Equal(t, model.StageNoUsername, f.controller.State().Stage)
	require.NotNil(t, f.controller.Username())

	// The draft persists in the background.
	require.Eventually(t, func() bool {
		profile, err := f.store.Get(context.Background(), "u1")
		return err == nil && profile != nil && profile.FirstName == "Asha"
	}, time.Second, 5*time.Millisecond)
}

func TestControllerUsernameSubmitCompletesSession(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageNoProfile})
	completeWizard(t, f)

	checker := f.controller.Username()
	require.NotNil(t, checker)
	checker.SetText("asha_22")
	require.Eventually(t, checker.CanSubmit, time.Second, 5*time.Millisecond)

	require.NoError(t, f.controller.SubmitUsername(context.Background()))
	assert.Equal(t, model.StageComplete, f.controller.State().Stage)

	profile, err := f.store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "asha_22", profile.Username)
	assert.Equal(t, "Asha", profile.FirstName)

	// The name is claimed for this uid.
	available, err := f.checker.CheckAvailable(context.Background(), "asha_22")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestControllerUsernameClaimRace(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageNoProfile})
	completeWizard(t, f)

	checker := f.controller.Username()
	checker.SetText("asha_22")
	require.Eventually(t, checker.CanSubmit, time.Second, 5*time.Millisecond)

	// Someone else claims the name between the check and the
	// submit.
	f.checker.Preclaim("asha_22", "other-uid")

	err := f.controller.SubmitUsername(context.Background())
	assert.ErrorIs(t, err, pkgerrors.UsernameTaken)
	assert.Equal(t, model.StageNoUsername, f.controller.State().Stage)
}

func TestControllerSubmitBeforeCheckResolves(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageNoProfile})
	completeWizard(t, f)

	err := f.controller.SubmitUsername(context.Background())
	assert.ErrorIs(t, err, pkgerrors.UsernameUnchecked)
}

func TestControllerBackFromUsernameKeepsDraft(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	waitForState(t, f.controller, State{Stage: model.StageNoProfile})
	completeWizard(t, f)

	checker := f.controller.Username()
	checker.SetText("asha_22")

	f.controller.BackFromUsername()

	wizard := f.controller.Wizard()
	require.NotNil(t, wizard)
	first, last := wizard.Name()
	assert.Equal(t, "Asha", first)
	assert.Equal(t, "Rao", last)

	// The candidate was discarded.
	assert.Equal(t, "", f.controller.Username().Text())
}
