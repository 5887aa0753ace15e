// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatui

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/rookie-ai/rookie-tui/internal/chat"
	"github.com/rookie-ai/rookie-tui/internal/inbox"
	"github.com/rookie-ai/rookie-tui/internal/kvstore"
	"github.com/rookie-ai/rookie-tui/internal/lang"
	"github.com/rookie-ai/rookie-tui/internal/model"
	"github.com/rookie-ai/rookie-tui/internal/ui/styles"
)

// sidebarWidth is the fixed column width of the session list.
const sidebarWidth = 26

// =============================================================================
// FOCUS AND OVERLAYS
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

type overlay int

const (
	overlayNone overlay = iota
	overlayLanguage
	overlayNotifications
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the main chat screen.
type Model struct {
	theme   *styles.Theme
	keys    KeyMap
	store   *chat.Store
	inbox   *inbox.Inbox
	kv      *kvstore.Store
	profile *model.Profile

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	focus      focusArea
	overlay    overlay
	sidebarIdx int
	langIdx    int
	notifIdx   int

	// language is the code the next fresh session will be started in.
	language string
	sending  bool
	ready    bool

	// pending is the user line rendered optimistically while its send is
	// still in flight.
	pending string

	// alertsCh delivers change signals from a watched local alerts file.
	// Nil when no file source is configured.
	alertsCh <-chan struct{}

	width  int
	height int
}

// New creates the chat screen. profile may be nil when only the local
// onboarded flag was found without a cached profile. alertsCh may be nil.
func New(theme *styles.Theme, store *chat.Store, in *inbox.Inbox, kv *kvstore.Store, profile *model.Profile, alertsCh <-chan struct{}) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about symptoms, prevention, vaccines..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text rendering.
		log.Printf("chatui: glamour renderer unavailable: %v", err)
		renderer = nil
	}

	m := Model{
		theme:    theme,
		keys:     DefaultKeyMap(),
		store:    store,
		inbox:    in,
		kv:       kv,
		profile:  profile,
		input:    ti,
		spinner:  sp,
		renderer: renderer,
		language: kv.GetDefault(kvstore.KeyLanguage, lang.DefaultCode),
		alertsCh: alertsCh,
	}
	m.langIdx = languageIndex(m.language)
	return m
}

// Init kicks off the notification fetch and the alerts-file listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.refreshNotifications()}
	if m.alertsCh != nil {
		cmds = append(cmds, m.listenAlerts())
	}
	return tea.Batch(cmds...)
}

// greeting returns the time-of-day salutation for the header.
func (m Model) greeting() string {
	name := "there"
	if m.profile != nil {
		name = m.profile.FirstName()
	}
	switch h := time.Now().Hour(); {
	case h < 12:
		return "Good morning, " + name
	case h < 17:
		return "Good afternoon, " + name
	default:
		return "Good evening, " + name
	}
}

func languageIndex(code string) int {
	for i, l := range lang.Supported {
		if l.Code == code {
			return i
		}
	}
	return 0
}
