package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drifty/internal/authstate"
	"drifty/internal/model"
	"drifty/internal/session"
	"drifty/pkg/profilestore"
	"drifty/pkg/uniqueness"
	"drifty/pkg/verify"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()

	provider := authstate.NewProvider()
	controller := session.NewController(
		provider,
		profilestore.NewMemoryStore(),
		uniqueness.NewMemoryChecker(),
		session.WithSettleDelay(0),
		session.WithUsernameDebounce(0),
	)
	controller.Start()
	t.Cleanup(controller.Stop)

	m, err := New(controller, provider, verify.NewMockClient("123456"))
	require.NoError(t, err)
	t.Cleanup(m.phone.Close)

	return m
}

func press(m *Model, keyType tea.KeyType, runes ...rune) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: keyType, Runes: runes})
	return cmd
}

func TestLandingAdvancesToPhone(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, ScreenLanding, m.screen)
	assert.Contains(t, m.View(), "drifty")

	press(m, tea.KeyEnter)
	assert.Equal(t, ScreenPhone, m.screen)
	assert.Contains(t, m.View(), "number")
}

func TestPhoneScreenShowsDialCode(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyEnter)

	// The default region's dial code is visible before any input.
	assert.Contains(t, m.View(), model.Regions[model.DefaultRegion].DialCode)

	press(m, tea.KeyRunes, '9', '8')
	assert.Equal(t, "98", m.phone.Digits())

	press(m, tea.KeyBackspace)
	assert.Equal(t, "9", m.phone.Digits())
}

func TestPhoneRegionCycling(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyEnter)

	start := m.phone.Region().Code
	press(m, tea.KeyRight)
	assert.NotEqual(t, start, m.phone.Region().Code)

	press(m, tea.KeyLeft)
	assert.Equal(t, start, m.phone.Region().Code)
}

func TestSendCodeFlowReachesOTP(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyEnter)

	require.NoError(t, m.phone.SetRegion("US"))
	m.regionIdx = indexOf(m.regionCodes, "US")
	press(m, tea.KeyRunes, []rune("2025550123")...)

	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	// Run the send command synchronously and feed its result back,
	// the way the bubbletea runtime would.
	msg := cmd()
	_, next := m.Update(msg)
	assert.Equal(t, ScreenOTP, m.screen)
	assert.False(t, m.busy)
	assert.NotNil(t, next)

	view := m.View()
	assert.Contains(t, view, "code")
	assert.True(t, strings.Contains(view, "resend in") || strings.Contains(view, "ctrl+r"))
}

func TestWindowSizeTracked(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 40, m.height)
}

func indexOf(codes []string, code string) int {
	for i, c := range codes {
		if c == code {
			return i
		}
	}
	return 0
}
