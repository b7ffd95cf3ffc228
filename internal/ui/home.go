package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"drifty/internal/model"
)

func (m *Model) updateHome(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, m.keys.SignOut) {
		m.controller.SignOut()
	}
	return m, nil
}

func (m *Model) viewHome() string {
	snap := m.controller.Session()

	name := "there"
	handle := ""
	if snap.Profile != nil {
		if snap.Profile.FirstName != "" {
			name = snap.Profile.FirstName
		}
		if snap.Profile.Username != "" {
			handle = "@" + snap.Profile.Username
		}
	}

	phone := ""
	if snap.Identity != nil {
		phone = snap.Identity.PhoneNumber
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).
			Render("Welcome back, " + name),
		lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(handle),
		"",
		lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("signed in as " + phone),
		"",
		lipgloss.NewStyle().Foreground(m.theme.HelpText).
			Render("ctrl+s: sign out · ctrl+c: quit"),
	}

	if snap.Profile == nil && snap.Stage == model.StageComplete {
		// Fail-open session: the profile could not be loaded.
		lines[1] = lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("profile temporarily unavailable")
	}

	return m.frame(strings.Join(lines, "\n"))
}
