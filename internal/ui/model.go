package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"drifty/config"
	"drifty/internal/authstate"
	"drifty/internal/flow"
	"drifty/internal/model"
	"drifty/internal/session"
	"drifty/pkg/challenge"
	"drifty/pkg/verify"
)

// Screen identifies which view is on screen. Auth screens are local
// to the UI; everything past the gate follows the session stage.
type Screen int

const (
	ScreenLanding Screen = iota
	ScreenPhone
	ScreenOTP
	ScreenWizard
	ScreenUsername
	ScreenHome
	ScreenLoading
)

// sessionChangedMsg is delivered whenever the session controller
// changes state off the UI goroutine.
type sessionChangedMsg struct{}

// usernameChangedMsg is delivered when an availability lookup lands.
type usernameChangedMsg struct{}

// sendCodeResultMsg carries the outcome of a code send or resend.
type sendCodeResultMsg struct {
	err error
}

// verifyResultMsg carries the outcome of a code verification.
type verifyResultMsg struct {
	identity *model.Identity
	err      error
}

// submitUsernameResultMsg carries the outcome of the final username
// claim and save.
type submitUsernameResultMsg struct {
	err error
}

// cooldownTickMsg redraws the resend countdown once a second while a
// cooldown is running.
type cooldownTickMsg struct{}

// Model is the root bubbletea model. It owns the auth flow machine
// directly and reads everything after sign-in from the session
// controller.
type Model struct {
	controller   *session.Controller
	provider     *authstate.Provider
	verifyClient verify.Client
	phone        *flow.PhoneVerification

	screen    Screen
	keys      KeyMap
	theme     Theme
	width     int
	height    int
	statusErr error

	// Landing / phone entry.
	regionCodes []string
	regionIdx   int

	// Wizard inputs.
	firstName  textinput.Model
	lastName   textinput.Model
	nameFocus  int
	genderIdx  int
	dateInputs [3]textinput.Model
	dateFocus  int

	// Username input.
	usernameInput textinput.Model

	sessionEvents  chan struct{}
	usernameEvents chan struct{}

	busy bool
}

// New builds the root model around an initialized session controller
// and verification client.
func New(controller *session.Controller, provider *authstate.Provider, client verify.Client) (*Model, error) {
	cooldown := time.Duration(config.Cfg.VerifyResendCooldown) * time.Second
	phone, err := flow.NewPhoneVerification(client, cooldown)
	if err != nil {
		return nil, err
	}

	m := &Model{
		controller:     controller,
		provider:       provider,
		verifyClient:   client,
		phone:          phone,
		screen:         ScreenLanding,
		keys:           DefaultKeyMap,
		theme:          DefaultTheme,
		regionCodes:    model.RegionCodes(),
		sessionEvents:  make(chan struct{}, 1),
		usernameEvents: make(chan struct{}, 1),
	}
	for i, code := range m.regionCodes {
		if code == model.DefaultRegion {
			m.regionIdx = i
		}
	}

	m.firstName = newTextInput("First name", 40)
	m.lastName = newTextInput("Last name", 40)
	m.usernameInput = newTextInput("username", 30)
	for i, placeholder := range []string{"DD", "MM", "YYYY"} {
		ti := newTextInput(placeholder, 4)
		ti.CharLimit = 4
		m.dateInputs[i] = ti
	}
	m.dateInputs[0].CharLimit = 2
	m.dateInputs[1].CharLimit = 2

	controller.SetOnChange(func() {
		select {
		case m.sessionEvents <- struct{}{}:
		default:
		}
	})

	return m, nil
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "> "
	return ti
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		listenForSessionChange(m.sessionEvents),
		textinput.Blink,
	)
}

// listenForSessionChange blocks until the controller reports a state
// transition, then wakes the update loop.
func listenForSessionChange(events <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-events
		return sessionChangedMsg{}
	}
}

func listenForUsernameChange(events <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-events
		return usernameChangedMsg{}
	}
}

func scheduleCooldownTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return cooldownTickMsg{}
	})
}

func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		return m, nil

	case sessionChangedMsg:
		cmd := m.syncScreenToSession()
		return m, tea.Batch(listenForSessionChange(m.sessionEvents), cmd)

	case usernameChangedMsg:
		return m, listenForUsernameChange(m.usernameEvents)

	case sendCodeResultMsg:
		m.busy = false
		m.statusErr = message.err
		if message.err == nil && m.phone.State() == flow.PhoneStateCodeSent {
			m.screen = ScreenOTP
			return m, scheduleCooldownTick()
		}
		return m, nil

	case verifyResultMsg:
		m.busy = false
		m.statusErr = message.err
		if message.err == nil && message.identity != nil {
			// The identity stream drives the session controller;
			// the next sessionChangedMsg moves us past the gate.
			m.screen = ScreenLoading
		}
		return m, nil

	case submitUsernameResultMsg:
		m.busy = false
		m.statusErr = message.err
		return m, nil

	case cooldownTickMsg:
		if m.screen == ScreenOTP && m.phone.ResendRemaining() > 0 {
			return m, scheduleCooldownTick()
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(message, m.keys.Quit) {
			return m, tea.Quit
		}
		return m.handleKey(message)
	}

	return m, nil
}

func (m *Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch m.screen {
	case ScreenLanding:
		return m.updateLanding(message)
	case ScreenPhone:
		return m.updatePhone(message)
	case ScreenOTP:
		return m.updateOTP(message)
	case ScreenWizard:
		return m.updateWizard(message)
	case ScreenUsername:
		return m.updateUsername(message)
	case ScreenHome:
		return m.updateHome(message)
	default:
		return m, nil
	}
}

// syncScreenToSession repositions the UI after a controller
// transition. Auth screens are left alone while signed out.
func (m *Model) syncScreenToSession() tea.Cmd {
	state := m.controller.State()

	if state.Loading {
		m.screen = ScreenLoading
		return nil
	}

	switch state.Stage {
	case model.StageNoIdentity:
		if m.screen == ScreenLoading || m.screen == ScreenHome ||
			m.screen == ScreenWizard || m.screen == ScreenUsername {
			m.resetAuthInputs()
			m.screen = ScreenLanding
		}
		return nil

	case model.StageNoProfile:
		m.screen = ScreenWizard
		m.seedWizardInputs()
		return m.focusWizard()

	case model.StageNoUsername:
		// A returning user with a profile goes straight to the
		// username screen; the wizard stays reachable via back.
		if m.screen != ScreenWizard {
			m.screen = ScreenUsername
			return m.focusUsername()
		}
		return nil

	case model.StageComplete:
		m.screen = ScreenHome
		return nil
	}

	return nil
}

// resetAuthInputs rebuilds the auth machinery for a fresh attempt. A
// verified phone machine is terminal, so sign-out replaces it.
func (m *Model) resetAuthInputs() {
	m.phone.Close()
	cooldown := time.Duration(config.Cfg.VerifyResendCooldown) * time.Second
	if fresh, err := flow.NewPhoneVerification(m.verifyClient, cooldown); err == nil {
		m.phone = fresh
	}
	m.statusErr = nil
	m.firstName.SetValue("")
	m.lastName.SetValue("")
	m.genderIdx = 0
	for i := range m.dateInputs {
		m.dateInputs[i].SetValue("")
	}
	m.usernameInput.SetValue("")
}

// challengeToken returns the anti-abuse token to attach to a send.
// The terminal cannot host a slider widget, so outside of the mock
// provider the token comes back empty and the backend decides.
func (m *Model) challengeToken() string {
	if config.Cfg.ChallengeProvider == "mock" {
		return challenge.MockToken
	}
	return ""
}

func (m *Model) sendCodeCmd() tea.Cmd {
	token := m.challengeToken()
	return func() tea.Msg {
		err := m.phone.SendCode(context.Background(), token)
		return sendCodeResultMsg{err: err}
	}
}

func (m *Model) resendCodeCmd() tea.Cmd {
	token := m.challengeToken()
	return func() tea.Msg {
		err := m.phone.Resend(context.Background(), token)
		return sendCodeResultMsg{err: err}
	}
}

func (m *Model) verifyCmd() tea.Cmd {
	return func() tea.Msg {
		identity, err := m.phone.Verify(context.Background())
		if err == nil && identity != nil {
			m.provider.Emit(identity)
		}
		return verifyResultMsg{identity: identity, err: err}
	}
}

func (m *Model) submitUsernameCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.controller.SubmitUsername(context.Background())
		return submitUsernameResultMsg{err: err}
	}
}

func (m *Model) View() string {
	switch m.screen {
	case ScreenLanding:
		return m.viewLanding()
	case ScreenPhone:
		return m.viewPhone()
	case ScreenOTP:
		return m.viewOTP()
	case ScreenWizard:
		return m.viewWizard()
	case ScreenUsername:
		return m.viewUsername()
	case ScreenHome:
		return m.viewHome()
	default:
		return m.viewLoading()
	}
}
