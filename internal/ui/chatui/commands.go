// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatui provides the main chat screen.
//
// This file defines the asynchronous commands and their result messages.
package chatui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rookie-ai/rookie-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// sendResultMsg carries the updated session after a send completes. Session
// is nil when the send was a no-op.
type sendResultMsg struct {
	session *model.ChatSession
}

// notificationsMsg carries a freshly merged notification list.
type notificationsMsg struct {
	items []model.NotificationItem
}

// alertsChangedMsg signals that the watched alerts file changed on disk.
type alertsChangedMsg struct{}

// SignOutRequestedMsg asks the parent to sign the user out.
type SignOutRequestedMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// sendFirstMessage starts a new session from its first message.
func (m Model) sendFirstMessage(text string) tea.Cmd {
	store, language := m.store, m.language
	return func() tea.Msg {
		session := store.SendFirstMessage(context.Background(), text, language)
		return sendResultMsg{session: session}
	}
}

// sendMessage appends to the active session.
func (m Model) sendMessage(text string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		session := store.SendMessage(context.Background(), text)
		return sendResultMsg{session: session}
	}
}

// refreshNotifications re-fetches the merged inbox.
func (m Model) refreshNotifications() tea.Cmd {
	in := m.inbox
	return func() tea.Msg {
		return notificationsMsg{items: in.Refresh(context.Background())}
	}
}

// listenAlerts waits for the next change signal from the alerts file watcher.
func (m Model) listenAlerts() tea.Cmd {
	ch := m.alertsCh
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return alertsChangedMsg{}
	}
}
