// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatui provides the main chat screen.
//
// This file implements the central message dispatch.
package chatui

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rookie-ai/rookie-tui/internal/kvstore"
	"github.com/rookie-ai/rookie-tui/internal/lang"
)

// Update handles all incoming messages for the chat screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sendResultMsg:
		m.sending = false
		m.pending = ""
		m.sidebarIdx = 0
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case notificationsMsg:
		if m.notifIdx >= len(m.inbox.Visible()) {
			m.notifIdx = 0
		}
		return m, nil

	case alertsChangedMsg:
		return m, tea.Batch(m.refreshNotifications(), m.listenAlerts())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusInput && m.overlay == overlayNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Header, input border and status bar take four rows.
	vpWidth := msg.Width - sidebarWidth - 3
	vpHeight := msg.Height - 4
	if vpWidth < 20 {
		vpWidth = 20
	}
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = vpWidth - 4
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m
}

// =============================================================================
// KEY DISPATCH
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayLanguage:
		return m.handleLanguageKey(msg)
	case overlayNotifications:
		return m.handleNotificationKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Theme):
		return m.toggleTheme(), nil

	case key.Matches(msg, m.keys.SignOut):
		return m, func() tea.Msg { return SignOutRequestedMsg{} }

	case key.Matches(msg, m.keys.NewChat):
		m.store.StartNewSession()
		m.overlay = overlayLanguage
		m.langIdx = languageIndex(m.language)
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.Notifications):
		m.overlay = overlayNotifications
		m.notifIdx = 0
		return m, m.refreshNotifications()

	case key.Matches(msg, m.keys.Language):
		m.overlay = overlayLanguage
		m.langIdx = languageIndex(m.language)
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

// =============================================================================
// AREA HANDLERS
// =============================================================================

func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	sessions := m.store.Sessions()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sidebarIdx > 0 {
			m.sidebarIdx--
		}
	case key.Matches(msg, m.keys.Down):
		if m.sidebarIdx < len(sessions)-1 {
			m.sidebarIdx++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.sidebarIdx < len(sessions) {
			m.store.SelectSession(sessions[m.sidebarIdx].ID)
			m.refreshTranscript()
			m.viewport.GotoBottom()
		}
		m.focus = focusInput
		m.input.Focus()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input line. Blank input and overlapping sends are no-ops.
func (m Model) submit() (Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.input.Reset()
	m.sending = true
	m.pending = text
	m.refreshTranscript()
	m.viewport.GotoBottom()

	var send tea.Cmd
	if m.store.ActiveID() == "" {
		send = m.sendFirstMessage(text)
	} else {
		send = m.sendMessage(text)
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

func (m Model) handleLanguageKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.langIdx > 0 {
			m.langIdx--
		}
	case key.Matches(msg, m.keys.Down):
		if m.langIdx < len(lang.Supported)-1 {
			m.langIdx++
		}
	case key.Matches(msg, m.keys.Submit):
		m.language = lang.Supported[m.langIdx].Code
		if err := m.kv.Set(kvstore.KeyLanguage, m.language); err != nil {
			log.Printf("chatui: persisting language: %v", err)
		}
		m.overlay = overlayNone
	case key.Matches(msg, m.keys.Cancel):
		m.overlay = overlayNone
	}
	return m, nil
}

func (m Model) handleNotificationKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	visible := m.inbox.Visible()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.notifIdx > 0 {
			m.notifIdx--
		}
	case key.Matches(msg, m.keys.Down):
		if m.notifIdx < len(visible)-1 {
			m.notifIdx++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.notifIdx < len(visible) {
			m.inbox.Dismiss(visible[m.notifIdx].ID)
			if m.notifIdx >= len(visible)-1 && m.notifIdx > 0 {
				m.notifIdx--
			}
		}
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Notifications):
		m.overlay = overlayNone
	}
	return m, nil
}

// toggleTheme flips dark/light and persists the choice.
func (m Model) toggleTheme() Model {
	m.theme.SetDark(!m.theme.IsDark)
	value := "light"
	if m.theme.IsDark {
		value = "dark"
	}
	if err := m.kv.Set(kvstore.KeyTheme, value); err != nil {
		log.Printf("chatui: persisting theme: %v", err)
	}
	m.refreshTranscript()
	return m
}
