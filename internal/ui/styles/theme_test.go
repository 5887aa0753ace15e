// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
	if !theme.Header.GetBold() {
		t.Error("header style should be bold")
	}
	if !theme.SidebarSelected.GetBold() {
		t.Error("selected sidebar item should be bold")
	}
}

func TestSetDark(t *testing.T) {
	theme := NewTheme()

	theme.SetDark(true)
	if !theme.IsDark {
		t.Error("IsDark should be true after SetDark(true)")
	}

	theme.SetDark(false)
	if theme.IsDark {
		t.Error("IsDark should be false after SetDark(false)")
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize(120, 40) = %dx%d", theme.Width, theme.Height)
	}
}
