package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"drifty/internal/flow"
	"drifty/internal/model"
)

// seedWizardInputs copies the wizard's current values into the text
// inputs so back navigation shows what was entered.
func (m *Model) seedWizardInputs() {
	wizard := m.controller.Wizard()
	if wizard == nil {
		return
	}

	first, last := wizard.Name()
	m.firstName.SetValue(first)
	m.lastName.SetValue(last)

	gender := wizard.Gender()
	for i, g := range model.GenderOrder {
		if g == gender {
			m.genderIdx = i
		}
	}

	day, month, year := wizard.BirthDateParts()
	if day > 0 {
		m.dateInputs[0].SetValue(strconv.Itoa(day))
	}
	if month > 0 {
		m.dateInputs[1].SetValue(strconv.Itoa(month))
	}
	if year > 0 {
		m.dateInputs[2].SetValue(strconv.Itoa(year))
	}
}

func (m *Model) focusWizard() tea.Cmd {
	wizard := m.controller.Wizard()
	if wizard == nil {
		return nil
	}
	switch wizard.Step() {
	case flow.StepName:
		m.nameFocus = 0
		m.lastName.Blur()
		return m.firstName.Focus()
	case flow.StepBirthDate:
		m.dateFocus = 0
		for i := range m.dateInputs {
			m.dateInputs[i].Blur()
		}
		return m.dateInputs[0].Focus()
	}
	return nil
}

func (m *Model) focusUsername() tea.Cmd {
	checker := m.controller.Username()
	if checker != nil {
		checker.SetOnChange(func() {
			select {
			case m.usernameEvents <- struct{}{}:
			default:
			}
		})
		m.usernameInput.SetValue(checker.Text())
	}
	return tea.Batch(
		m.usernameInput.Focus(),
		listenForUsernameChange(m.usernameEvents),
	)
}

func (m *Model) updateWizard(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	wizard := m.controller.Wizard()
	if wizard == nil {
		return m, nil
	}

	switch wizard.Step() {
	case flow.StepName:
		return m.updateWizardName(message, wizard)
	case flow.StepGender:
		return m.updateWizardGender(message, wizard)
	case flow.StepBirthDate:
		return m.updateWizardDate(message, wizard)
	}
	return m, nil
}

func (m *Model) updateWizardName(message tea.KeyMsg, wizard *flow.OnboardingWizard) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Submit):
		wizard.SetName(m.firstName.Value(), m.lastName.Value())
		if err := wizard.NextFromName(); err != nil {
			m.statusErr = err
			return m, nil
		}
		m.statusErr = nil
		return m, nil

	case key.Matches(message, m.keys.Up), key.Matches(message, m.keys.Down):
		m.nameFocus = 1 - m.nameFocus
		if m.nameFocus == 0 {
			m.lastName.Blur()
			return m, m.firstName.Focus()
		}
		m.firstName.Blur()
		return m, m.lastName.Focus()
	}

	var cmd tea.Cmd
	if m.nameFocus == 0 {
		m.firstName, cmd = m.firstName.Update(message)
	} else {
		m.lastName, cmd = m.lastName.Update(message)
	}
	wizard.SetName(m.firstName.Value(), m.lastName.Value())
	return m, cmd
}

func (m *Model) updateWizardGender(message tea.KeyMsg, wizard *flow.OnboardingWizard) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Back):
		m.statusErr = nil
		_ = wizard.Back()
		return m, m.focusWizard()

	case key.Matches(message, m.keys.Up):
		m.genderIdx = (m.genderIdx + len(model.GenderOrder) - 1) % len(model.GenderOrder)
		return m, nil

	case key.Matches(message, m.keys.Down):
		m.genderIdx = (m.genderIdx + 1) % len(model.GenderOrder)
		return m, nil

	case key.Matches(message, m.keys.Submit):
		if err := wizard.SelectGender(model.GenderOrder[m.genderIdx]); err != nil {
			m.statusErr = err
			return m, nil
		}
		m.statusErr = nil
		return m, m.focusWizard()
	}
	return m, nil
}

func (m *Model) updateWizardDate(message tea.KeyMsg, wizard *flow.OnboardingWizard) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Back):
		m.statusErr = nil
		_ = wizard.Back()
		return m, nil

	case key.Matches(message, m.keys.Up), key.Matches(message, m.keys.Down):
		step := 1
		if key.Matches(message, m.keys.Up) {
			step = len(m.dateInputs) - 1
		}
		m.dateInputs[m.dateFocus].Blur()
		m.dateFocus = (m.dateFocus + step) % len(m.dateInputs)
		return m, m.dateInputs[m.dateFocus].Focus()

	case key.Matches(message, m.keys.Submit):
		day, _ := strconv.Atoi(m.dateInputs[0].Value())
		month, _ := strconv.Atoi(m.dateInputs[1].Value())
		year, _ := strconv.Atoi(m.dateInputs[2].Value())
		wizard.SetBirthDate(day, month, year)
		if err := m.controller.CompleteWizard(); err != nil {
			m.statusErr = err
			return m, nil
		}
		m.statusErr = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.dateInputs[m.dateFocus], cmd = m.dateInputs[m.dateFocus].Update(message)
	day, _ := strconv.Atoi(m.dateInputs[0].Value())
	month, _ := strconv.Atoi(m.dateInputs[1].Value())
	year, _ := strconv.Atoi(m.dateInputs[2].Value())
	wizard.SetBirthDate(day, month, year)
	return m, cmd
}

func (m *Model) updateUsername(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	checker := m.controller.Username()
	if checker == nil {
		return m, nil
	}

	switch {
	case key.Matches(message, m.keys.Back):
		m.statusErr = nil
		m.usernameInput.SetValue("")
		m.controller.BackFromUsername()
		m.screen = ScreenWizard
		m.seedWizardInputs()
		return m, m.focusWizard()

	case key.Matches(message, m.keys.Submit):
		if !checker.CanSubmit() {
			return m, nil
		}
		m.busy = true
		m.statusErr = nil
		return m, m.submitUsernameCmd()
	}

	var cmd tea.Cmd
	m.usernameInput, cmd = m.usernameInput.Update(message)
	checker.SetText(m.usernameInput.Value())
	return m, cmd
}

func (m *Model) viewWizard() string {
	wizard := m.controller.Wizard()
	if wizard == nil {
		return m.viewLoading()
	}

	switch wizard.Step() {
	case flow.StepName:
		return m.viewWizardName()
	case flow.StepGender:
		return m.viewWizardGender()
	default:
		return m.viewWizardDate(wizard)
	}
}

func (m *Model) viewWizardName() string {
	lines := []string{
		m.stepHeader(1, "What's your name?"),
		"",
		m.firstName.View(),
		m.lastName.View(),
		"",
		m.errorLine(),
		lipgloss.NewStyle().Foreground(m.theme.HelpText).
			Render("tab: switch field · enter: continue"),
	}
	return m.frame(strings.Join(lines, "\n"))
}

func (m *Model) viewWizardGender() string {
	var options []string
	for i, g := range model.GenderOrder {
		label := "  " + model.GenderLabels[g] + "  "
		style := lipgloss.NewStyle().Foreground(m.theme.NormalText)
		if i == m.genderIdx {
			style = lipgloss.NewStyle().
				Foreground(m.theme.SelectedForeground).
				Background(m.theme.SelectedBackground)
		}
		options = append(options, style.Render(label))
	}

	lines := []string{
		m.stepHeader(2, "How do you identify?"),
		"",
		strings.Join(options, "\n"),
		"",
		m.errorLine(),
		lipgloss.NewStyle().Foreground(m.theme.HelpText).
			Render("↑/↓: choose · enter: continue · esc: back"),
	}
	return m.frame(strings.Join(lines, "\n"))
}

func (m *Model) viewWizardDate(wizard *flow.OnboardingWizard) string {
	fields := lipgloss.JoinHorizontal(lipgloss.Top,
		m.dateInputs[0].View(), "  ",
		m.dateInputs[1].View(), "  ",
		m.dateInputs[2].View(),
	)

	monthHint := ""
	if _, month, _ := wizard.BirthDateParts(); month >= 1 && month <= 12 {
		monthHint = lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render(flow.MonthNames[month-1])
	}

	inline := ""
	if err := wizard.DateError(); err != nil {
		inline = lipgloss.NewStyle().Foreground(m.theme.ErrorText).Render(err.Error())
	}

	lines := []string{
		m.stepHeader(3, "When were you born?"),
		"",
		fields,
		monthHint,
		inline,
		m.errorLine(),
		lipgloss.NewStyle().Foreground(m.theme.HelpText).
			Render("tab: next field · enter: finish · esc: back"),
	}
	return m.frame(strings.Join(lines, "\n"))
}

func (m *Model) viewUsername() string {
	checker := m.controller.Username()
	if checker == nil {
		return m.viewLoading()
	}

	verdict := ""
	switch checker.Status() {
	case flow.UsernameChecking:
		verdict = lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("checking...")
	case flow.UsernameAvailable:
		verdict = lipgloss.NewStyle().Foreground(m.theme.OKText).Render("available")
	case flow.UsernameTaken:
		verdict = lipgloss.NewStyle().Foreground(m.theme.ErrorText).Render("already taken")
	case flow.UsernameInvalid:
		if err := checker.Err(); err != nil {
			verdict = lipgloss.NewStyle().Foreground(m.theme.ErrorText).Render(err.Error())
		}
	case flow.UsernameCheckFailed:
		verdict = lipgloss.NewStyle().Foreground(m.theme.ErrorText).
			Render("could not check, keep typing to retry")
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Pick a username"),
		lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("letters, numbers, periods and underscores"),
		"",
		m.usernameInput.View(),
		verdict,
		m.errorLine(),
		lipgloss.NewStyle().Foreground(m.theme.HelpText).
			Render("enter: claim · esc: back"),
	}
	if m.busy {
		lines[5] = lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Claiming...")
	}
	return m.frame(strings.Join(lines, "\n"))
}

func (m *Model) stepHeader(step int, title string) string {
	counter := lipgloss.NewStyle().Foreground(m.theme.FaintText).
		Render(strings.Repeat("● ", step) + strings.Repeat("○ ", 3-step))
	return counter + "\n" + lipgloss.NewStyle().Bold(true).Render(title)
}
