// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header   lipgloss.Style
	Greeting lipgloss.Style
	Brand    lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar          lipgloss.Style
	SidebarTitle     lipgloss.Style
	SidebarItem      lipgloss.Style
	SidebarSelected  lipgloss.Style
	SidebarLanguage  lipgloss.Style
	SidebarNewChat   lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	RoleLabel       lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SPINNER AND PENDING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// NOTIFICATION STYLES
	// ==========================================================================

	Badge             lipgloss.Style
	NotificationBox   lipgloss.Style
	NotificationTitle lipgloss.Style
	NotificationMeta  lipgloss.Style
	NotificationItem  lipgloss.Style
	NotificationFocus lipgloss.Style

	// ==========================================================================
	// FORM AND OVERLAY STYLES
	// ==========================================================================

	FormLabel      lipgloss.Style
	Option         lipgloss.Style
	OptionSelected lipgloss.Style
	OptionFocused  lipgloss.Style
	ErrorBox       lipgloss.Style

	// ==========================================================================
	// SPLASH STYLES
	// ==========================================================================

	SplashTitle    lipgloss.Style
	SplashSubtitle lipgloss.Style
	SplashFooter   lipgloss.Style
	TermsBox       lipgloss.Style
}

// NewTheme creates a theme from the detected terminal capabilities.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// SetDark overrides the detected background with the persisted theme choice.
func (t *Theme) SetDark(dark bool) {
	t.IsDark = dark
	if dark {
		lipgloss.SetHasDarkBackground(true)
	} else {
		lipgloss.SetHasDarkBackground(false)
	}
	t.initStyles()
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Padding(0, 1)

	t.Greeting = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.Brand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SidebarSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Teal)

	t.SidebarLanguage = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SidebarNewChat = lipgloss.NewStyle().
		Foreground(Emerald)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserBubbleBorder).
		PaddingLeft(1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AssistantBubbleBorder).
		PaddingLeft(1)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner
	t.Spinner = lipgloss.NewStyle().
		Foreground(Teal)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Notifications
	t.Badge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Rose).
		Padding(0, 1)

	t.NotificationBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(1, 2)

	t.NotificationTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.NotificationMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.NotificationItem = lipgloss.NewStyle().
		PaddingLeft(1)

	t.NotificationFocus = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(Teal)

	// Forms
	t.FormLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Option = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.OptionSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)

	t.OptionFocused = lipgloss.NewStyle().
		Foreground(Teal).
		Padding(0, 1).
		Underline(true)

	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Rose).
		PaddingLeft(1)

	// Splash
	t.SplashTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Align(lipgloss.Center)

	t.SplashSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Align(lipgloss.Center)

	t.SplashFooter = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	t.TermsBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)
}
