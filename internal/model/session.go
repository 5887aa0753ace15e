// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"time"
)

// FallbackTitle is used when title generation fails or has not produced a
// result. It must never block a reply from being shown.
const FallbackTitle = "New Chat"

// DefaultLanguage is the language assigned to a session when none was chosen.
const DefaultLanguage = "en"

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds one conversation thread: an identifier, a short title
// derived from the first user message, the ordered transcript, and the
// language the session was started in.
//
// Title and Language are fixed at creation and never change afterwards.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewChatSession creates a session from its first exchange. An empty title
// falls back to FallbackTitle; an empty language falls back to
// DefaultLanguage.
func NewChatSession(id, title, language string, messages []Message) ChatSession {
	if title == "" {
		title = FallbackTitle
	}
	if language == "" {
		language = DefaultLanguage
	}
	now := time.Now()
	return ChatSession{
		ID:        id,
		Title:     title,
		Messages:  messages,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds messages to the transcript and bumps the update time.
func (s *ChatSession) Append(messages ...Message) {
	s.Messages = append(s.Messages, messages...)
	s.UpdatedAt = time.Now()
}

// MessageCount returns the number of messages in the session.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// LastMessage returns the most recent message, or a zero Message if the
// transcript is empty.
func (s *ChatSession) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// =============================================================================
// SESSION ID GENERATION
// =============================================================================

// NewSessionID generates a time-based session identifier. Uniqueness is only
// required within one session list; taken reports ids already in use so that
// two sessions created within the same millisecond never collide.
func NewSessionID(taken func(id string) bool) string {
	ms := time.Now().UnixMilli()
	id := strconv.FormatInt(ms, 10)
	if taken == nil {
		return id
	}
	for taken(id) {
		ms++
		id = strconv.FormatInt(ms, 10)
	}
	return id
}
