// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package onboarding implements the profile form: a name field plus fixed
// gender and exam-track option groups. Submission goes through the resolver,
// which writes the remote record and the local cache.
package onboarding

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rookie-ai/rookie-tui/internal/model"
	"github.com/rookie-ai/rookie-tui/internal/resolver"
	"github.com/rookie-ai/rookie-tui/internal/ui/styles"
)

// =============================================================================
// FIELDS AND MESSAGES
// =============================================================================

type field int

const (
	fieldName field = iota
	fieldGender
	fieldExam
	fieldSubmit
	fieldCount
)

// CompletedMsg is emitted to the parent once the profile has been saved.
type CompletedMsg struct {
	Profile *model.Profile
}

// submitResultMsg carries the outcome of a save attempt.
type submitResultMsg struct {
	profile *model.Profile
	err     error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the onboarding form screen.
type Model struct {
	theme    *styles.Theme
	resolver *resolver.Resolver

	nameInput textinput.Model
	gender    int // index into model.GenderOptions, -1 when unset
	exam      int // index into model.ExamOptions, -1 when unset
	focus     field

	// hasSession switches the heading from first-run registration to
	// completing a partially filled remote profile.
	hasSession bool
	submitting bool
	errText    string

	width  int
	height int
}

// New creates the form, optionally pre-filled with a known name.
func New(theme *styles.Theme, res *resolver.Resolver, prefillName string, hasSession bool) Model {
	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.CharLimit = 64
	ti.SetValue(prefillName)
	ti.Focus()

	return Model{
		theme:      theme,
		resolver:   res,
		nameInput:  ti,
		gender:     -1,
		exam:       -1,
		focus:      fieldName,
		hasSession: hasSession,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles focus movement, option selection and submission.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case submitResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		profile := msg.profile
		return m, func() tea.Msg { return CompletedMsg{Profile: profile} }

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil

		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil

		case "left":
			if m.focus != fieldName {
				m.cycleOption(-1)
				return m, nil
			}

		case "right":
			if m.focus != fieldName {
				m.cycleOption(1)
				return m, nil
			}

		case "enter":
			if m.focus == fieldSubmit {
				return m.submit()
			}
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		}
	}

	if m.focus == fieldName {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setFocus(f field) {
	m.focus = f
	if f == fieldName {
		m.nameInput.Focus()
	} else {
		m.nameInput.Blur()
	}
}

// cycleOption moves the selection within the focused option group. Moving
// into an unset group selects its first entry.
func (m *Model) cycleOption(delta int) {
	switch m.focus {
	case fieldGender:
		m.gender = cycle(m.gender, delta, len(model.GenderOptions))
	case fieldExam:
		m.exam = cycle(m.exam, delta, len(model.ExamOptions))
	}
}

func cycle(current, delta, count int) int {
	if current < 0 {
		return 0
	}
	return (current + delta + count) % count
}

// submit validates locally, then saves through the resolver.
func (m Model) submit() (Model, tea.Cmd) {
	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" || m.gender < 0 || m.exam < 0 {
		m.errText = "Please fill in your name, gender and exam."
		return m, nil
	}

	m.errText = ""
	m.submitting = true
	gender := model.GenderOptions[m.gender]
	exam := model.ExamOptions[m.exam]
	res := m.resolver

	return m, func() tea.Msg {
		profile, err := res.CompleteOnboarding(context.Background(), name, gender, exam)
		return submitResultMsg{profile: profile, err: err}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the form centered in the terminal.
func (m Model) View() string {
	t := m.theme

	heading := "Tell us about yourself"
	if m.hasSession {
		heading = "Complete your profile"
	}

	var b strings.Builder
	b.WriteString(t.SplashTitle.Render(heading))
	b.WriteString("\n\n")

	b.WriteString(t.FormLabel.Render("Name"))
	b.WriteString("\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n\n")

	b.WriteString(t.FormLabel.Render("Gender"))
	b.WriteString("\n")
	b.WriteString(m.renderOptions(model.GenderOptions, m.gender, m.focus == fieldGender))
	b.WriteString("\n\n")

	b.WriteString(t.FormLabel.Render("Preparing for"))
	b.WriteString("\n")
	b.WriteString(m.renderOptions(model.ExamOptions, m.exam, m.focus == fieldExam))
	b.WriteString("\n\n")

	submit := "[ Get Started ]"
	if m.submitting {
		submit = "[ Saving... ]"
	}
	if m.focus == fieldSubmit {
		b.WriteString(t.OptionSelected.Render(submit))
	} else {
		b.WriteString(t.Option.Render(submit))
	}

	if m.errText != "" {
		b.WriteString("\n\n")
		b.WriteString(t.ErrorBox.Render(m.errText))
	}

	b.WriteString("\n\n")
	b.WriteString(t.SplashFooter.Render("tab to move · left/right to choose · enter to submit"))

	body := m.theme.TermsBox.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m Model) renderOptions(options []string, selected int, focused bool) string {
	t := m.theme
	parts := make([]string, 0, len(options))
	for i, opt := range options {
		switch {
		case i == selected:
			parts = append(parts, t.OptionSelected.Render(opt))
		case focused:
			parts = append(parts, t.OptionFocused.Render(opt))
		default:
			parts = append(parts, t.Option.Render(opt))
		}
	}
	return strings.Join(parts, " ")
}
