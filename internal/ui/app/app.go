// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app implements the root bubbletea model: it holds the active
// screen (splash, onboarding form or chat) and routes between them based on
// resolver decisions and auth-state changes.
package app

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rookie-ai/rookie-tui/internal/backend"
	"github.com/rookie-ai/rookie-tui/internal/chat"
	"github.com/rookie-ai/rookie-tui/internal/inbox"
	"github.com/rookie-ai/rookie-tui/internal/kvstore"
	"github.com/rookie-ai/rookie-tui/internal/resolver"
	"github.com/rookie-ai/rookie-tui/internal/ui/chatui"
	"github.com/rookie-ai/rookie-tui/internal/ui/onboarding"
	"github.com/rookie-ai/rookie-tui/internal/ui/splash"
	"github.com/rookie-ai/rookie-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps carries every collaborator the screens need. The root model passes
// them down explicitly; nothing reaches for globals.
type Deps struct {
	Theme    *styles.Theme
	Resolver *resolver.Resolver
	Backend  *backend.Client
	KV       *kvstore.Store
	Chats    *chat.Store
	Inbox    *inbox.Inbox

	// AlertsCh delivers change signals from a watched local alerts file.
	// Nil when no file source is configured.
	AlertsCh <-chan struct{}
}

// =============================================================================
// MESSAGES
// =============================================================================

// resolutionMsg carries a route decision from the resolver subscription.
type resolutionMsg struct {
	res resolver.Resolution
}

// signedOutMsg reports that a requested sign-out finished.
type signedOutMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

type screen int

const (
	screenSplash screen = iota
	screenOnboarding
	screenChat
)

// Model is the root application model.
type Model struct {
	deps Deps
	sub  *resolver.Subscription

	screen     screen
	splash     splash.Model
	onboarding onboarding.Model
	chat       chatui.Model

	width  int
	height int
}

// New creates the root model from an initial resolver decision.
func New(deps Deps, initial resolver.Resolution) Model {
	m := Model{
		deps: deps,
		sub:  deps.Resolver.Subscribe(context.Background()),
	}
	m.apply(initial)
	return m
}

// apply switches the active screen to match a resolution.
func (m *Model) apply(res resolver.Resolution) {
	switch res.Route {
	case resolver.RouteMain:
		m.screen = screenChat
		m.chat = chatui.New(m.deps.Theme, m.deps.Chats, m.deps.Inbox, m.deps.KV, res.Profile, m.deps.AlertsCh)
	case resolver.RouteOnboarding:
		m.screen = screenOnboarding
		hasSession := m.deps.Backend.CurrentSession() != nil
		m.onboarding = onboarding.New(m.deps.Theme, m.deps.Resolver, res.PrefillName, hasSession)
	default:
		m.screen = screenSplash
		m.splash = splash.New(m.deps.Theme)
	}
}

// Init starts the active screen and the resolution listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.screenInit(), m.listenResolutions())
}

func (m Model) screenInit() tea.Cmd {
	switch m.screen {
	case screenChat:
		return m.chat.Init()
	case screenOnboarding:
		return m.onboarding.Init()
	default:
		return m.splash.Init()
	}
}

// listenResolutions waits for the next auth-driven route change.
func (m Model) listenResolutions() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		res, ok := <-sub.Resolutions()
		if !ok {
			return nil
		}
		return resolutionMsg{res: res}
	}
}

// signOut clears the remote session; the subscription routes back to splash.
func (m Model) signOut() tea.Cmd {
	client := m.deps.Backend
	return func() tea.Msg {
		if err := client.SignOut(context.Background()); err != nil {
			log.Printf("app: sign out: %v", err)
		}
		return signedOutMsg{}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the active screen and handles transitions.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Fall through to the active screen below.

	case resolutionMsg:
		m.apply(msg.res)
		return m, tea.Batch(m.screenStartup(), m.listenResolutions())

	case signedOutMsg:
		return m, nil

	case splash.AcceptedMsg:
		// No remote session: the splash flow leads to local registration.
		m.apply(resolver.Resolution{Route: resolver.RouteOnboarding})
		return m, m.screenStartup()

	case onboarding.CompletedMsg:
		m.apply(resolver.Resolution{Route: resolver.RouteMain, Profile: msg.Profile})
		return m, m.screenStartup()

	case chatui.SignOutRequestedMsg:
		return m, m.signOut()
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenChat:
		m.chat, cmd = m.chat.Update(msg)
	case screenOnboarding:
		m.onboarding, cmd = m.onboarding.Update(msg)
	default:
		m.splash, cmd = m.splash.Update(msg)
	}
	return m, cmd
}

// screenStartup initializes a newly activated screen and replays the last
// known terminal size so it lays itself out immediately.
func (m *Model) screenStartup() tea.Cmd {
	init := m.screenInit()
	if m.width == 0 {
		return init
	}
	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
	switch m.screen {
	case screenChat:
		m.chat, _ = m.chat.Update(size)
	case screenOnboarding:
		m.onboarding, _ = m.onboarding.Update(size)
	default:
		m.splash, _ = m.splash.Update(size)
	}
	return init
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen.
func (m Model) View() string {
	switch m.screen {
	case screenChat:
		return m.chat.View()
	case screenOnboarding:
		return m.onboarding.View()
	default:
		return m.splash.View()
	}
}

// Close tears down the resolver subscription.
func (m Model) Close() {
	m.sub.Unsubscribe()
}
