package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"drifty/internal/flow"
	"drifty/internal/model"
)

func (m *Model) updateLanding(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, m.keys.Submit) {
		m.screen = ScreenPhone
		m.statusErr = nil
	}
	return m, nil
}

func (m *Model) updatePhone(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Left):
		m.regionIdx = (m.regionIdx + len(m.regionCodes) - 1) % len(m.regionCodes)
		_ = m.phone.SetRegion(m.regionCodes[m.regionIdx])
		m.statusErr = nil
		return m, nil

	case key.Matches(message, m.keys.Right):
		m.regionIdx = (m.regionIdx + 1) % len(m.regionCodes)
		_ = m.phone.SetRegion(m.regionCodes[m.regionIdx])
		m.statusErr = nil
		return m, nil

	case key.Matches(message, m.keys.Back):
		m.screen = ScreenLanding
		return m, nil

	case key.Matches(message, m.keys.Submit):
		if !m.phone.CanSubmit() {
			return m, nil
		}
		m.busy = true
		m.statusErr = nil
		return m, m.sendCodeCmd()

	case message.Type == tea.KeyBackspace:
		m.phone.Backspace()
		return m, nil

	case message.Type == tea.KeyRunes:
		m.phone.InputDigits(string(message.Runes))
		return m, nil
	}

	return m, nil
}

func (m *Model) updateOTP(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Back):
		m.phone.BackToPhone()
		m.screen = ScreenPhone
		m.statusErr = nil
		return m, nil

	case key.Matches(message, m.keys.Resend):
		if m.phone.ResendRemaining() > 0 {
			return m, nil
		}
		m.busy = true
		m.statusErr = nil
		return m, m.resendCodeCmd()

	case key.Matches(message, m.keys.Submit):
		if !m.phone.OTPComplete() {
			return m, nil
		}
		m.busy = true
		m.statusErr = nil
		return m, m.verifyCmd()

	case message.Type == tea.KeyBackspace:
		m.phone.BackspaceOTP()
		return m, nil

	case message.Type == tea.KeyRunes:
		// A multi-rune delivery is a paste; single runes are typed.
		if len(message.Runes) > 1 {
			m.phone.PasteOTP(string(message.Runes))
			return m, nil
		}
		m.phone.InputOTPDigit(message.Runes[0])
		if m.phone.OTPComplete() {
			m.busy = true
			m.statusErr = nil
			return m, m.verifyCmd()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) viewLanding() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).
		Render("drifty")
	tagline := lipgloss.NewStyle().Foreground(m.theme.FaintText).
		Render("drift into conversations near you")
	help := lipgloss.NewStyle().Foreground(m.theme.HelpText).
		Render("enter: continue with phone · ctrl+c: quit")

	return m.frame(strings.Join([]string{title, "", tagline, "", help}, "\n"))
}

func (m *Model) viewPhone() string {
	region := m.phone.Region()

	var regions []string
	for i, code := range m.regionCodes {
		r := model.Regions[code]
		label := fmt.Sprintf(" %s %s ", r.Code, r.DialCode)
		style := lipgloss.NewStyle().Foreground(m.theme.FaintText)
		if i == m.regionIdx {
			style = lipgloss.NewStyle().
				Foreground(m.theme.SelectedForeground).
				Background(m.theme.SelectedBackground)
		}
		regions = append(regions, style.Render(label))
	}

	digits := m.phone.Digits()
	display := region.DialCode + " " + digits
	if digits == "" {
		display = region.DialCode + " " + lipgloss.NewStyle().
			Foreground(m.theme.FaintText).Render(strings.Repeat("·", region.MinDigits))
	}

	hint := ""
	switch {
	case digits == "":
		hint = lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("we'll text you a verification code")
	case m.phone.CanSubmit():
		hint = lipgloss.NewStyle().Foreground(m.theme.OKText).
			Render("Looks good!")
	default:
		span := fmt.Sprintf("%d", region.MinDigits)
		if region.MaxDigits != region.MinDigits {
			span = fmt.Sprintf("%d to %d", region.MinDigits, region.MaxDigits)
		}
		hint = lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render(fmt.Sprintf("%s numbers have %s digits", region.DisplayName, span))
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("What's your number?"),
		"",
		strings.Join(regions, " "),
		"",
		lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(display),
		hint,
		m.errorLine(),
		lipgloss.NewStyle().Foreground(m.theme.HelpText).
			Render("←/→: region · enter: send code · esc: back"),
	}
	if m.busy {
		lines[6] = lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Sending code...")
	}
	return m.frame(strings.Join(lines, "\n"))
}

func (m *Model) viewOTP() string {
	code := m.phone.OTPCode()
	cursor := m.phone.OTPCursor()

	var cells []string
	for i := 0; i < flow.OTPLength; i++ {
		ch := " "
		if i < len(code) && code[i] != ' ' {
			ch = string(code[i])
		}
		border := m.theme.CellBorder
		if i == cursor && m.phone.State() == flow.PhoneStateCodeSent {
			border = m.theme.CellActiveBorder
		}
		cell := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Render(ch)
		cells = append(cells, cell)
	}

	resend := "ctrl+r: resend code"
	if remaining := m.phone.ResendRemaining(); remaining > 0 {
		resend = fmt.Sprintf("resend in %ds", int(remaining.Seconds()+0.999))
	}

	region := m.phone.Region()
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Enter the code"),
		lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("We sent a 6-digit code to " + region.DialCode + " " + m.phone.Digits()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cells...),
		"",
		m.errorLine(),
		lipgloss.NewStyle().Foreground(m.theme.HelpText).
			Render(resend + " · esc: change number"),
	}
	if m.busy {
		lines[5] = lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Verifying...")
	}
	return m.frame(strings.Join(lines, "\n"))
}

func (m *Model) viewLoading() string {
	return m.frame(lipgloss.NewStyle().Foreground(m.theme.FaintText).
		Render("Loading your profile..."))
}

func (m *Model) errorLine() string {
	if m.statusErr == nil {
		return ""
	}
	return lipgloss.NewStyle().Foreground(m.theme.ErrorText).
		Render(m.statusErr.Error())
}

// frame centers content inside the terminal when dimensions are
// known.
func (m *Model) frame(content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(1, 3).
		Render(content)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
