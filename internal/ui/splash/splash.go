// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package splash implements the introductory flow shown to a user with no
// session and no local profile: a timed logo screen followed by a
// terms/consent step. Accepting the terms hands control to the onboarding
// form.
package splash

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rookie-ai/rookie-tui/internal/ui/styles"
)

// LogoDuration is how long the logo screen is held before the terms step.
const LogoDuration = 3 * time.Second

// =============================================================================
// PHASES AND MESSAGES
// =============================================================================

type phase int

const (
	phaseLogo phase = iota
	phaseTerms
)

// advanceMsg moves the splash from the logo to the terms step.
type advanceMsg struct{}

// AcceptedMsg is emitted to the parent once the user accepts the terms.
type AcceptedMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Model is the splash/terms screen.
type Model struct {
	theme  *styles.Theme
	phase  phase
	width  int
	height int
}

// New creates the splash screen in its logo phase.
func New(theme *styles.Theme) Model {
	return Model{theme: theme, phase: phaseLogo}
}

// Init starts the logo timer.
func (m Model) Init() tea.Cmd {
	return tea.Tick(LogoDuration, func(time.Time) tea.Msg {
		return advanceMsg{}
	})
}

// Update handles the timer and the accept/quit keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case advanceMsg:
		m.phase = phaseTerms

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if m.phase == phaseTerms {
				return m, func() tea.Msg { return AcceptedMsg{} }
			}
		case " ":
			// Let an impatient user skip the logo hold.
			if m.phase == phaseLogo {
				m.phase = phaseTerms
			}
		}
	}
	return m, nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the current phase centered in the terminal.
func (m Model) View() string {
	var body string
	switch m.phase {
	case phaseLogo:
		body = m.viewLogo()
	default:
		body = m.viewTerms()
	}

	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m Model) viewLogo() string {
	var b strings.Builder
	b.WriteString(m.theme.SplashTitle.Render("rookie"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.SplashSubtitle.Render("Your health awareness companion"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.SplashFooter.Render("loading..."))
	return b.String()
}

func (m Model) viewTerms() string {
	terms := strings.Join([]string{
		m.theme.SplashTitle.Render("Before you start"),
		"",
		"Answers are generated automatically and may be",
		"incomplete or wrong. They are not medical advice.",
		"For diagnosis or treatment, consult a qualified",
		"health professional or an official health advisory.",
		"",
		m.theme.SplashFooter.Render("enter to accept · q to quit"),
	}, "\n")
	return m.theme.TermsBox.Render(terms)
}
