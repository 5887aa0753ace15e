// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatui provides the main chat screen.
//
// This file implements rendering: header, sidebar, transcript, input line,
// status bar and the two overlays.
package chatui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rookie-ai/rookie-tui/internal/inbox"
	"github.com/rookie-ai/rookie-tui/internal/lang"
	"github.com/rookie-ai/rookie-tui/internal/model"
	"github.com/rookie-ai/rookie-tui/internal/util"
)

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	switch m.overlay {
	case overlayLanguage:
		return m.overlayView(m.languagePickerView())
	case overlayNotifications:
		return m.overlayView(m.notificationsView())
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		main,
		m.inputView(),
		m.statusBarView(),
	)
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) headerView() string {
	t := m.theme

	left := t.Brand.Render("rookie") + "  " + t.Greeting.Render(m.greeting())

	bell := "[bell]"
	if unread := m.inbox.Unread(); unread > 0 {
		bell = t.Badge.Render(fmt.Sprintf("%d new", unread))
	}
	langLabel := t.ShortcutDesc.Render(lang.Label(m.language))

	right := langLabel + " " + bell
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return t.Header.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) inputView() string {
	t := m.theme
	if m.sending {
		return t.InputContainer.Width(m.width - 2).Render(
			m.spinner.View() + " " + t.ThinkingText.Render("typing..."))
	}
	return t.InputContainer.Width(m.width - 2).Render(
		t.InputPrompt.Render("> ") + m.input.View())
}

func (m Model) statusBarView() string {
	t := m.theme
	parts := make([]string, 0, 8)
	for _, b := range m.keys.ShortHelp() {
		help := b.Help()
		parts = append(parts, t.ShortcutKey.Render(help.Key)+" "+t.ShortcutDesc.Render(help.Desc))
	}
	return t.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) sidebarView() string {
	t := m.theme
	sessions := m.store.Sessions()
	activeID := m.store.ActiveID()

	var b strings.Builder
	title := "Chats"
	if m.focus == focusSidebar {
		title = "Chats (focused)"
	}
	b.WriteString(t.SidebarTitle.Render(title))
	b.WriteString("\n")
	if activeID == "" {
		b.WriteString(t.SidebarNewChat.Render("+ new chat"))
		b.WriteString("\n")
	}

	maxRows := m.viewport.Height - 2
	for i, s := range sessions {
		if i >= maxRows {
			break
		}
		title := util.PadRight(util.TruncateWidth(s.Title, sidebarWidth-7), sidebarWidth-7)
		line := title + " " + lang.Lookup(s.Language).Code
		switch {
		case m.focus == focusSidebar && i == m.sidebarIdx:
			line = t.SidebarSelected.Render(line)
		case s.ID == activeID:
			line = t.SidebarSelected.Render(line)
		default:
			line = t.SidebarItem.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return t.Sidebar.Width(sidebarWidth).Height(m.viewport.Height).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the active transcript into the viewport.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcriptView())
}

func (m Model) transcriptView() string {
	t := m.theme
	session := m.store.ActiveSession()

	var b strings.Builder
	if session == nil && m.pending == "" {
		b.WriteString(t.Greeting.Render("How can I help you today?"))
		b.WriteString("\n\n")
		b.WriteString(t.ShortcutDesc.Render("Type a message below to start a new chat."))
		return b.String()
	}

	if session != nil {
		for _, msg := range session.Messages {
			b.WriteString(m.renderMessage(msg))
			b.WriteString("\n")
		}
	}
	if m.pending != "" {
		b.WriteString(m.renderMessage(model.Message{Role: model.RoleUser, Content: m.pending}))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMessage(msg model.Message) string {
	t := m.theme
	label := t.RoleLabel.Render(msg.Role.DisplayName())

	content := msg.Content
	if msg.Role == model.RoleAssistant && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}

	bubble := t.UserBubble
	if msg.Role == model.RoleAssistant {
		bubble = t.AssistantBubble
	}
	return label + "\n" + bubble.Render(content) + "\n"
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) overlayView(body string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m Model) languagePickerView() string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.NotificationTitle.Render("Chat language"))
	b.WriteString("\n\n")
	for i, l := range lang.Supported {
		line := fmt.Sprintf("%s (%s)", l.Label, l.Code)
		if i == m.langIdx {
			b.WriteString(t.OptionSelected.Render(line))
		} else {
			b.WriteString(t.Option.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.NotificationMeta.Render("enter to choose · esc to keep current"))
	return t.NotificationBox.Render(b.String())
}

func (m Model) notificationsView() string {
	t := m.theme
	visible := m.inbox.Visible()

	var b strings.Builder
	b.WriteString(t.NotificationTitle.Render(fmt.Sprintf("Notifications (%d unread)", m.inbox.Unread())))
	b.WriteString("\n\n")

	if len(visible) == 0 {
		b.WriteString(t.NotificationMeta.Render("All caught up."))
	}
	for i, item := range visible {
		line := fmt.Sprintf("[%s] %s", inbox.ImageKey(item), util.TruncateWidth(item.Title, 48))
		meta := fmt.Sprintf("%s · %s", item.Author, item.Date.Format("2006-01-02"))
		if i == m.notifIdx {
			b.WriteString(t.NotificationFocus.Render(line))
		} else {
			b.WriteString(t.NotificationItem.Render(line))
		}
		b.WriteString("\n")
		b.WriteString(t.NotificationMeta.Render("  " + meta))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.NotificationMeta.Render("enter to dismiss · esc to close"))
	return t.NotificationBox.Render(b.String())
}
