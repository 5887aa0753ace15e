// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestProfile_IsComplete(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    bool
	}{
		{
			name:    "all fields set",
			profile: Profile{Name: "Asha Rao", Gender: "Female", Exam: "NEET"},
			want:    true,
		},
		{
			name:    "missing gender",
			profile: Profile{Name: "Asha Rao", Exam: "NEET"},
			want:    false,
		},
		{
			name:    "missing exam",
			profile: Profile{Name: "Asha Rao", Gender: "Female"},
			want:    false,
		},
		{
			name:    "whitespace name",
			profile: Profile{Name: "   ", Gender: "Female", Exam: "NEET"},
			want:    false,
		},
		{
			name:    "empty profile",
			profile: Profile{},
			want:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.profile.IsComplete(); got != tc.want {
				t.Errorf("IsComplete() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProfile_IsOnboarded(t *testing.T) {
	// Onboarded is derived from gender and exam only; the name does not count.
	p := Profile{Gender: "Male", Exam: "JEE Mains"}
	if !p.IsOnboarded() {
		t.Error("profile with gender and exam should be onboarded")
	}

	p = Profile{Name: "Ravi", Gender: "Male"}
	if p.IsOnboarded() {
		t.Error("profile without exam should not be onboarded")
	}
}

func TestValidGender(t *testing.T) {
	for _, g := range GenderOptions {
		if !ValidGender(g) {
			t.Errorf("ValidGender(%q) = false, want true", g)
		}
	}
	if ValidGender("unknown") {
		t.Error("ValidGender(unknown) should be false")
	}
	if ValidGender("") {
		t.Error("ValidGender of empty string should be false")
	}
}

func TestValidExam(t *testing.T) {
	for _, e := range ExamOptions {
		if !ValidExam(e) {
			t.Errorf("ValidExam(%q) = false, want true", e)
		}
	}
	if ValidExam("GATE") {
		t.Error("ValidExam(GATE) should be false")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewUserMessage("Hello")
	if msg.ID == "" {
		t.Error("expected generated message ID")
	}
	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello")
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestMessage_IsBlank(t *testing.T) {
	if !NewUserMessage("   \n\t").IsBlank() {
		t.Error("whitespace-only message should be blank")
	}
	if NewUserMessage("hi").IsBlank() {
		t.Error("non-empty message should not be blank")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("line one\nline two which is rather long and keeps going")
	preview := msg.Preview(20)
	if len([]rune(preview)) > 20 {
		t.Errorf("Preview too long: %q", preview)
	}
	for _, r := range preview {
		if r == '\n' {
			t.Error("Preview should not contain newlines")
		}
	}
}

func TestRole_DisplayName(t *testing.T) {
	if got := RoleUser.DisplayName(); got != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", got)
	}
	if got := RoleAssistant.DisplayName(); got != "Assistant" {
		t.Errorf("RoleAssistant.DisplayName() = %q", got)
	}
}

// =============================================================================
// CHAT SESSION TESTS
// =============================================================================

func TestNewChatSession_Defaults(t *testing.T) {
	s := NewChatSession("123", "", "", nil)
	if s.Title != FallbackTitle {
		t.Errorf("Title = %q, want fallback %q", s.Title, FallbackTitle)
	}
	if s.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", s.Language, DefaultLanguage)
	}
}

func TestChatSession_TitleAndLanguageFixed(t *testing.T) {
	s := NewChatSession("1", "Dengue symptoms", "hi", []Message{
		NewUserMessage("बुखार के लक्षण"),
		NewAssistantMessage("..."),
	})

	title, language := s.Title, s.Language
	s.Append(NewUserMessage("next question"), NewAssistantMessage("next answer"))

	if s.Title != title {
		t.Error("Title changed after append")
	}
	if s.Language != language {
		t.Error("Language changed after append")
	}
	if s.MessageCount() != 4 {
		t.Errorf("MessageCount = %d, want 4", s.MessageCount())
	}
}

func TestChatSession_AppendUpdatesTimestamp(t *testing.T) {
	s := NewChatSession("1", "t", "en", nil)
	before := s.UpdatedAt
	time.Sleep(time.Millisecond)
	s.Append(NewUserMessage("hi"))
	if !s.UpdatedAt.After(before) {
		t.Error("UpdatedAt should advance on append")
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	taken := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewSessionID(func(id string) bool { return taken[id] })
		if taken[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		taken[id] = true
	}
}

// =============================================================================
// READ SET TESTS
// =============================================================================

func TestReadSet_UnreadCount(t *testing.T) {
	items := []NotificationItem{
		{ID: "a", Title: "Dengue alert"},
		{ID: "b", Title: "Covid booster drive"},
		{ID: "c", Title: "Malaria season"},
	}

	var read ReadSet
	if got := read.UnreadCount(items); got != 3 {
		t.Errorf("UnreadCount = %d, want 3", got)
	}

	read = read.Add("b")
	if got := read.UnreadCount(items); got != 2 {
		t.Errorf("UnreadCount = %d, want 2", got)
	}

	// Duplicate dismissals must not change the count.
	read = read.Add("b")
	read = read.Add("b")
	if got := read.UnreadCount(items); got != 2 {
		t.Errorf("UnreadCount after duplicate Add = %d, want 2", got)
	}

	read = read.Add("a")
	read = read.Add("c")
	if got := read.UnreadCount(items); got != 0 {
		t.Errorf("UnreadCount = %d, want 0", got)
	}
}

func TestReadSet_Contains(t *testing.T) {
	read := ReadSet{"x", "y"}
	if !read.Contains("x") {
		t.Error("Contains(x) should be true")
	}
	if read.Contains("z") {
		t.Error("Contains(z) should be false")
	}
}
